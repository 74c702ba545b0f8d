package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/vocab-review/internal/generation"
)

// MockGenerator implements generation.Generator for testing. It is safe for
// concurrent use.
type MockGenerator struct {
	GenerateExamplesFn func(ctx context.Context, term, definition string) ([]string, error)

	// Default response values
	Examples []string
	Err      error

	mu    sync.Mutex
	terms []string
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateExamples implements generation.Generator
func (m *MockGenerator) GenerateExamples(ctx context.Context, term, definition string) ([]string, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.mu.Unlock()

	if m.GenerateExamplesFn != nil {
		return m.GenerateExamplesFn(ctx, term, definition)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]string(nil), m.Examples...), nil
}

// Terms returns the terms GenerateExamples was called with, in call order.
func (m *MockGenerator) Terms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terms...)
}
