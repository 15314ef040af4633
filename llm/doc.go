// Package llm defines the inference-provider boundary: the Provider
// interface, the request/response shapes, and wrappers that add rate
// limiting on top of any provider implementation.
//
// The model is treated as an opaque capability. Provider failures are
// surfaced as *types.Error values carrying one of the MODEL_* codes;
// retry policy lives with the caller (see llm/retry), never inside a
// provider or an agent.
package llm
