package profile

import (
	"context"
	"sync"
)

// MemoryRepo is an in-process Repo. Values round-trip through the codec
// so callers never share mutable state with the repository.
type MemoryRepo struct {
	mu    sync.Mutex
	codec *Codec
	blobs map[string][]byte
}

// NewMemoryRepo returns an empty MemoryRepo. A nil codec disables skill
// reference checks.
func NewMemoryRepo(codec *Codec) *MemoryRepo {
	if codec == nil {
		codec = NewCodec(nil)
	}
	return &MemoryRepo{codec: codec, blobs: make(map[string][]byte)}
}

func (m *MemoryRepo) Get(_ context.Context, key string) (*Profile, error) {
	m.mu.Lock()
	b, ok := m.blobs[key]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return m.codec.Decode(b)
}

func (m *MemoryRepo) Put(_ context.Context, key string, p *Profile) error {
	b, err := m.codec.Encode(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

// PutRaw stores an undecoded blob. It exists so tests can seed corrupt data.
func (m *MemoryRepo) PutRaw(key string, blob []byte) {
	m.mu.Lock()
	m.blobs[key] = blob
	m.mu.Unlock()
}
