package credentials

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

const serviceName = "nativetoolkit"

var ErrNotFound = errors.New("credentials: not found")

// Store keeps application secrets.
type Store interface {
	Store(key, value string) error
	Load(key string) (string, error)
	Delete(key string)
}

// Keyring stores secrets in the OS keyring.
type Keyring struct{}

func (Keyring) Store(key, value string) error {
	if err := keyring.Set(serviceName, "app:"+key, value); err != nil {
		return fmt.Errorf("credentials: store %s: %w", key, err)
	}
	return nil
}

func (Keyring) Load(key string) (string, error) {
	val, err := keyring.Get(serviceName, "app:"+key)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func (Keyring) Delete(key string) {
	_ = keyring.Delete(serviceName, "app:"+key)
}

// Memory is a Store for tests and machines without a keyring.
type Memory struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *Memory) Store(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals == nil {
		m.vals = make(map[string]string)
	}
	m.vals[key] = value
	return nil
}

func (m *Memory) Load(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
}
