package memory

import (
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings in memory. It stands in for the TOML store
// when the config file cannot be opened, so nothing set survives the process.
type ConfigStore struct {
	values *kv.Map
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: kv.New()}
}

func (s *ConfigStore) Get(key string) (any, bool) { return s.values.Get(key) }
func (s *ConfigStore) GetString(key string) string { return s.values.GetString(key) }
func (s *ConfigStore) GetInt(key string) int { return s.values.GetInt(key) }
func (s *ConfigStore) GetDuration(key string) time.Duration { return s.values.GetDuration(key) }
func (s *ConfigStore) GetStringSlice(key string) []string { return s.values.GetStringSlice(key) }

// Set never fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.values.Put(key, value)
	return nil
}
