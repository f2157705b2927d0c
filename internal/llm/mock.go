package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator replays scripted outputs in order, for tests that need a
// generator without a backend.
type MockGenerator struct {
	mu      sync.Mutex
	model   string
	outputs []string
	calls   int
}

// NewMockGenerator returns a generator that yields the given outputs in
// sequence, repeating the last one once the script is exhausted.
func NewMockGenerator(model string, outputs ...string) *MockGenerator {
	if model == "" {
		model = "mock"
	}
	return &MockGenerator{model: model, outputs: outputs}
}

func (m *MockGenerator) Model() string { return m.model }

func (m *MockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.outputs) == 0 {
		return "", fmt.Errorf("mock generator has no scripted outputs")
	}
	i := m.calls
	m.calls++
	if i >= len(m.outputs) {
		i = len(m.outputs) - 1
	}
	return m.outputs[i], nil
}

// Calls reports how many times Generate has been invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
