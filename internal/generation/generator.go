package generation

import "context"

// Generator produces example sentences for a vocabulary word.
// This interface is the boundary between the review service and external
// AI/LLM services.
type Generator interface {
	// GenerateExamples returns example sentences that use term with the
	// given definition. It returns an error wrapping one of the errors in
	// errors.go when generation fails.
	GenerateExamples(ctx context.Context, term, definition string) ([]string, error)
}
