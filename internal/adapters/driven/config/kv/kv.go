// Package kv is the flat, dotted-key value map shared by the config stores.
// Typed getters accept the shapes TOML, JSON and Go callers produce and
// return the zero value for anything else.
package kv

import (
	"maps"
	"sync"
	"time"
)

// Map is safe for concurrent use.
type Map struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{data: make(map[string]any)}
}

func (m *Map) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Put stores value under key.
func (m *Map) Put(key string, value any) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

func (m *Map) Delete(key string) {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
}

// Replace swaps the whole content for data. The map is copied.
func (m *Map) Replace(data map[string]any) {
	m.mu.Lock()
	m.data = maps.Clone(data)
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the content.
func (m *Map) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

func (m *Map) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

// GetInt truncates floats. TOML integers arrive as int64.
func (m *Map) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetDuration reads "1m30s" style strings, time.Duration values and
// numbers of seconds.
func (m *Map) GetDuration(key string) time.Duration {
	v, _ := m.Get(key)
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0
		}
		return parsed
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	}
	return 0
}

// GetStringSlice drops non-string elements of a decoded []any.
func (m *Map) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
