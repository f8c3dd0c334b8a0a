package config

// Default values.
const (
	DefaultStorePath = "factoryledger.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// SetDefaults sets default values for all empty configuration fields.
func SetDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
