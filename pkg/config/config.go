package config

import "time"

// ChatBackend definition chat_service YAML structure
type ChatBackend struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	// FlushInterval is how often the entry point flushes the buffered
	// managers. Zero disables the ticker; buffers then persist only on
	// shutdown.
	FlushInterval time.Duration `mapstructure:"flush_interval"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Token      TokenConfig    `mapstructure:"token"`
}

// TokenConfig definition jwt signing setting
type TokenConfig struct {
	// Secret is the HS256 shared key. Process-wide, never per user.
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
