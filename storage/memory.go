package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/ipld/go-ipld-prime/storage"
)

// Memory is a Storage that keeps blocks in memory.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string][]byte
}

var (
	_ Storage                          = (*Memory)(nil)
	_ storage.StreamingReadableStorage = (*Memory)(nil)
)

// NewMemory returns an empty memory backed Storage.
func NewMemory() *Memory {
	return &Memory{
		blocks: make(map[string][]byte),
	}
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[key]
	return ok, nil
}

func (m *Memory) Put(ctx context.Context, key string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// blocks are immutable so an existing block is never replaced
	if _, ok := m.blocks[key]; !ok {
		m.blocks[key] = slices.Clone(content)
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	content, err := m.block(key)
	if err != nil {
		return nil, err
	}
	return slices.Clone(content), nil
}

func (m *Memory) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	content, err := m.block(key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *Memory) block(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.blocks[key]
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrNotFound, key)
	}
	return content, nil
}
