package repositories

import "sync"

// MockPreferenceRepository is an in-memory implementation of PreferenceRepository.
type MockPreferenceRepository struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMockPreferenceRepository creates a new instance of MockPreferenceRepository.
func NewMockPreferenceRepository() *MockPreferenceRepository {
	return &MockPreferenceRepository{
		values: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (r *MockPreferenceRepository) Get(key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (r *MockPreferenceRepository) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

// Delete removes keys.
func (r *MockPreferenceRepository) Delete(keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}
