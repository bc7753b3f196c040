package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/gamestore/internal/dependencies/random"
)

// MockRandom returns queued tokens, then deterministic fallbacks
type MockRandom struct {
	mu      sync.Mutex
	tokens  []string
	counter int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or "token-N" when the queue is empty
func (r *MockRandom) Token(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) > 0 {
		t := r.tokens[0]
		r.tokens = r.tokens[1:]
		return t
	}
	r.counter++
	return fmt.Sprintf("token-%d", r.counter)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, values...)
}
