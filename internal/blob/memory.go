package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// Memory is an in-process Sink for tests and ephemeral runs. It counts
// releases per reference so tests can assert exactly-once cleanup.
type Memory struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	released map[string]int
	failWith error
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		blobs:    make(map[string][]byte),
		released: make(map[string]int),
	}
}

// FailNextStore makes the next Store call return err.
func (m *Memory) FailNextStore(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

func (m *Memory) Store(data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		err := m.failWith
		m.failWith = nil
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}
	sum := sha256.Sum256(data)
	ref := hex.EncodeToString(sum[:])
	m.blobs[ref] = data
	return ref, nil
}

func (m *Memory) Open(ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[ref]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return b, nil
}

func (m *Memory) Release(ref string) error {
	if ref == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[ref]; ok {
		delete(m.blobs, ref)
		m.released[ref]++
	}
	return nil
}

// Releases reports how many effective releases ref received.
func (m *Memory) Releases(ref string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released[ref]
}

// Len reports how many blobs are currently held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
