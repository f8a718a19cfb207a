package config

import (
	"os"
	"sort"
	"strings"
)

// Store is the immutable key/value layer the Resolver reads from.
// Build it with Load or NewStore; it is never mutated afterwards.
type Store struct {
	values map[string]string
}

// NewStore merges layers into a new Store. Later layers win on collision.
func NewStore(layers ...map[string]string) *Store {
	values := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			values[k] = v
		}
	}
	return &Store{values: values}
}

// Lookup returns the raw (unexpanded) value stored for key.
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns all keys in ascending order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int { return len(s.values) }

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}
