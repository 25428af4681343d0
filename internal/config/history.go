package config

// DefaultHistoryMaxEntries is the number of entries kept when history is
// written back to disk.
const DefaultHistoryMaxEntries = 2500

// HistoryConfig configures the persistent input history.
type HistoryConfig struct {
	// Path of the history file. "~" expands to the user's home directory.
	Path string `yaml:"path"`

	// MaxEntries caps the entries written on persist.
	MaxEntries int `yaml:"max_entries"`

	// Append is the initial state of the history-append toggle (Ctrl+Q).
	Append bool `yaml:"append"`
}
