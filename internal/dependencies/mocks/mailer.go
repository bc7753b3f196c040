package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/gamestore/internal/services/mail"
)

// MockMailer records sent messages instead of delivering them
type MockMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

var _ mail.Sender = (*MockMailer)(nil)

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message, or returns Err if set
func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far
func (m *MockMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// Last returns the most recent message, or false if none were sent
func (m *MockMailer) Last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return mail.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
