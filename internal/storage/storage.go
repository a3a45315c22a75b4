// Package storage persists session settings.
package storage

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("setting not found")

// Store is a flat string key-value store.
type Store interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// Settings namespaces a Store with a prefix.
type Settings struct {
	Store  Store
	Prefix string
}

// NewSettings creates settings stored under prefix.
func NewSettings(store Store, prefix string) *Settings {
	return &Settings{Store: store, Prefix: prefix}
}

func (s *Settings) key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return s.Prefix + "." + name
}

// Get returns the setting and whether it was present.
func (s *Settings) Get(name string) (string, bool) {
	value, err := s.Store.Load(s.key(name))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warningf("loading %q: %v", s.key(name), err)
		}
		return "", false
	}
	return value, true
}

// Set stores the setting.
func (s *Settings) Set(name, value string) error {
	return s.Store.Save(s.key(name), value)
}

// Memory is an in-memory Store.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// Load implements Store.
func (m *Memory) Load(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Save implements Store.
func (m *Memory) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
