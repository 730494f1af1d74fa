// Package config provides functional-options configuration for the
// store and its engine marker, following the WithX(...) OptionFunc
// pattern used throughout the Ignite storage examples this project
// draws on.
package config

const (
	// DefaultCompactionThreshold is the number of stale bytes a
	// directory may accumulate before Set triggers a compaction pass.
	DefaultCompactionThreshold int64 = 1 << 20 // 1 MiB

	// DefaultEngineMarkerFile names the file that pins which engine
	// implementation owns a data directory.
	DefaultEngineMarkerFile = "engine"

	// DefaultWriteBufferSize sizes the buffered writer placed in front
	// of each segment file.
	DefaultWriteBufferSize = 4096

	// DefaultReadBufferSize is the default for Config.ReadBufferSize.
	// Segment readers read their files directly and do not use it.
	DefaultReadBufferSize = 4096
)

// Config holds the tunables shared by the log-structured engine.
type Config struct {
	CompactionThreshold int64
	EngineMarkerFile    string
	WriteBufferSize     int
	ReadBufferSize      int
}

// OptionFunc mutates a Config in place.
type OptionFunc func(*Config)

// Default returns a Config populated with the package defaults.
func Default() Config {
	return Config{
		CompactionThreshold: DefaultCompactionThreshold,
		EngineMarkerFile:    DefaultEngineMarkerFile,
		WriteBufferSize:     DefaultWriteBufferSize,
		ReadBufferSize:      DefaultReadBufferSize,
	}
}

// New builds a Config from the defaults with the given options applied.
func New(opts ...OptionFunc) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithCompactionThreshold overrides the stale-byte threshold that
// triggers compaction. Values <= 0 are ignored.
func WithCompactionThreshold(n int64) OptionFunc {
	return func(c *Config) {
		if n > 0 {
			c.CompactionThreshold = n
		}
	}
}

// WithEngineMarkerFile overrides the engine marker filename.
func WithEngineMarkerFile(name string) OptionFunc {
	return func(c *Config) {
		if name != "" {
			c.EngineMarkerFile = name
		}
	}
}
