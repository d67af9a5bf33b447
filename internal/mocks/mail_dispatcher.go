package mocks

import "sync"

// MockMailDispatcher implements service.MailDispatcher for testing. It
// records every enqueued notification for verification.
type MockMailDispatcher struct {
	mu sync.Mutex

	// WelcomeCalls records the (email, name) pairs passed to EnqueueWelcome.
	WelcomeCalls []MailCall

	// CancellationCalls records the pairs passed to EnqueueCancellation.
	CancellationCalls []MailCall
}

// MailCall is one recorded notification enqueue.
type MailCall struct {
	Email string
	Name  string
}

// EnqueueWelcome implements the service.MailDispatcher interface.
func (m *MockMailDispatcher) EnqueueWelcome(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WelcomeCalls = append(m.WelcomeCalls, MailCall{Email: email, Name: name})
}

// EnqueueCancellation implements the service.MailDispatcher interface.
func (m *MockMailDispatcher) EnqueueCancellation(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancellationCalls = append(m.CancellationCalls, MailCall{Email: email, Name: name})
}
