package storage

import (
	"errors"
	"sync"
)

var ErrUnavailable = errors.New("storage unavailable")

// Memory is a map-backed Backend. Setting Fail makes every call return
// ErrUnavailable, which is how tests simulate a full or missing store.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
	Fail bool
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
