package concurrency

import "sync"

// KeyLockManager serializes processing per key (member id, chat id, ...).
type KeyLockManager struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func NewKeyLockManager() *KeyLockManager {
	return &KeyLockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *KeyLockManager) Lock(key string) {
	m.mu.Lock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()
	lock.Lock()
}

func (m *KeyLockManager) Unlock(key string) {
	m.mu.Lock()
	lock, ok := m.locks[key]
	if ok {
		lock.Unlock()
	}
	m.mu.Unlock()
}
