// Package generation defines the boundary to external LLM services that
// produce example sentences for vocabulary words. The review service depends
// only on the Generator interface; the Gemini adapter lives in
// internal/platform/gemini.
package generation
