package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, query, context string) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate produces a deterministic answer derived from the query.
func (m *MockGenerator) Generate(ctx context.Context, query, docContext string) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, query, docContext)
	}

	if docContext == "" {
		return fmt.Sprintf("no supporting context for: %s", query), nil
	}
	return fmt.Sprintf("answer to: %s", query), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
}
