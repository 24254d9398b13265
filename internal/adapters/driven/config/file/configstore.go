package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// FileName is the configuration file inside the config directory.
const FileName = "config.toml"

// ConfigStore keeps settings in a TOML file. Keys are dotted in memory
// and nested as tables on disk, so "llm.provider" is written as provider
// under [llm]. Every Set rewrites the file.
type ConfigStore struct {
	writeMu  sync.Mutex
	filePath string
	values   *kv.Map
}

// NewConfigStore opens configDir/config.toml, creating configDir when
// needed. An empty configDir means ~/.sercha-rag.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sercha-rag")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, FileName),
		values:   kv.New(),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) { return s.values.Get(key) }
func (s *ConfigStore) GetString(key string) string { return s.values.GetString(key) }
func (s *ConfigStore) GetInt(key string) int { return s.values.GetInt(key) }
func (s *ConfigStore) GetDuration(key string) time.Duration { return s.values.GetDuration(key) }
func (s *ConfigStore) GetStringSlice(key string) []string { return s.values.GetStringSlice(key) }

// Set stores value and rewrites the file. On a write failure the previous
// value is restored. Durations are written as strings.
func (s *ConfigStore) Set(key string, value any) error {
	if d, ok := value.(time.Duration); ok {
		value = d.String()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, had := s.values.Get(key)
	s.values.Put(key, value)
	if err := s.save(); err != nil {
		if had {
			s.values.Put(key, prev)
		} else {
			s.values.Delete(key)
		}
		return err
	}
	return nil
}

// save requires writeMu.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.values.Snapshot()))
	if err != nil {
		return err
	}
	// 0600: API keys may be stored here.
	return os.WriteFile(s.filePath, data, 0600)
}

// Load replaces the in-memory values with the file content. A missing
// file loads as empty.
func (s *ConfigStore) Load() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.values.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.values.Replace(flatten(loaded, ""))
	return nil
}

// Path returns the TOML file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flatten(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flatten(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nest is the inverse of flatten. A key whose prefix is already a leaf
// value stays flat.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)

	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for i, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				node[strings.Join(parts[i:], ".")] = value
				node = nil
				break
			}
			node = next
		}
		if node != nil {
			node[parts[len(parts)-1]] = value
		}
	}

	return root
}
