package logger

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum logging level (debug, info, warn, error, fatal).
	Level string `env:"LOG_LEVEL" yaml:"level"`
	// Development disables sampling so every entry is visible.
	Development bool `env:"LOG_DEVELOPMENT" yaml:"development"`
	// OutputPaths is a list of URLs or file paths to write logging output to.
	OutputPaths []string `env:"LOG_OUTPUT_PATHS" yaml:"output_paths"`
}

// DefaultLevel is the default logging level.
const DefaultLevel = "info"

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if len(c.OutputPaths) == 0 {
		// CLI output owns stdout, so logs go to stderr.
		c.OutputPaths = []string{"stderr"}
	}
}
