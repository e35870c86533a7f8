package storage

import (
	"context"
	"sync"
)

// KV is a namespaced string key-value store. A namespace is one browser
// session or one CLI profile.
type KV interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Close() error
}

// Scoped binds a KV to one namespace.
type Scoped struct {
	kv        KV
	namespace string
}

// Scope returns a store that reads and writes only within namespace.
func Scope(kv KV, namespace string) *Scoped {
	return &Scoped{kv: kv, namespace: namespace}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.kv.Get(ctx, s.namespace, key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.namespace, key, value)
}

// Memory is an in-process KV. Contents are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
