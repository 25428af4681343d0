package config

// UsageConfig configures the submission statistics file.
type UsageConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}
