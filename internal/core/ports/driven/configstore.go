package driven

import "time"

// ConfigStore is the key/value source behind the settings service.
// Keys are dotted paths such as "embedding.model". Typed getters return
// the zero value for a missing key or a value of the wrong type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts integer and float values from TOML or JSON decoding.
	GetInt(key string) int

	// GetDuration accepts a time.ParseDuration string or whole seconds.
	GetDuration(key string) time.Duration

	// GetStringSlice accepts []string and []any of strings.
	GetStringSlice(key string) []string

	// Set stores the value. Persistent stores write through immediately.
	Set(key string, value any) error
}
