package driven

// ConfigStore is a flat key/value view over the settings file. Keys are
// dotted paths such as "embedding.provider" or "grouping.section_threshold".
type ConfigStore interface {
	// Get reports whether key is set.
	Get(key string) (any, bool)

	// The typed getters return the zero value for a missing key or a value
	// of the wrong type.
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set changes a value and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the location of the settings file.
	Path() string
}
