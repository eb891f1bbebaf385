package driven

// ConfigStore provides typed access to application configuration.
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when unset.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false when unset.
	GetBool(key string) bool

	// GetStringSlice retrieves a list of strings, nil when unset.
	GetStringSlice(key string) []string

	// Set stores a configuration value and persists it.
	Set(key string, value any) error
}
