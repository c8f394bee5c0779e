package credential

import (
	"context"
	"sync"
)

// Memory keeps credentials in process memory.
type Memory struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemory returns a store pre-filled with creds.
func NewMemory(creds Credentials) *Memory {
	return &Memory{creds: creds}
}

func (m *Memory) Get(_ context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *Memory) Set(_ context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if creds.Username != "" {
		m.creds.Username = creds.Username
	}
	if creds.Room != "" {
		m.creds.Room = creds.Room
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
