// Package types provides the core data model shared across paperflow.
// This package has ZERO dependencies on other paperflow packages to avoid
// circular imports. All other packages should import types from here.
package types
