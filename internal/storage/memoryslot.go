package storage

import (
	"context"
	"sync"
)

// MemorySlot is a Slot held in process memory. It backs ephemeral sessions
// and tests; FailPut and FailGet inject errors.
type MemorySlot struct {
	mu      sync.Mutex
	data    map[string][]byte
	FailPut error
	FailGet error
}

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (s *MemorySlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet != nil {
		return nil, false, s.FailGet
	}
	data, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *MemorySlot) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return s.FailPut
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemorySlot) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemorySlot) Close() error { return nil }
