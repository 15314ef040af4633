// Copyright 2026 Paperflow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil provides shared helpers for paperflow tests.

It exists so the packages do not grow copies of the same test
infrastructure. Tests should prefer these helpers and the mocks
subpackage over ad-hoc implementations.

Core helpers:

  - Context helpers: TestContext / TestContextWithTimeout /
    CancelledContext, with automatic Cleanup registration
  - Fixture factories: Material / Facts, returning research material
    and extracted facts realistic enough to drive a full session

Subpackages:

  - testutil/mocks: MockProvider, a builder-style llm.Provider with
    scripted responses, error injection, and call recording

Example:

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithResponse("section text")
	resp, err := provider.Complete(ctx, req)
*/
package testutil
