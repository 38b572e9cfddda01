package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	UploadDir    string `mapstructure:"upload_dir" yaml:"upload_dir"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	GatewayTimeout time.Duration `mapstructure:"gateway_timeout" yaml:"gateway_timeout"`

	WebhookSecret    string        `mapstructure:"webhook_secret" yaml:"webhook_secret"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance" yaml:"webhook_tolerance"`
	// WebhookRateLimit caps webhook deliveries per minute; 0 disables.
	WebhookRateLimit int `mapstructure:"webhook_rate_limit" yaml:"webhook_rate_limit"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "agenthub.db",
		UploadDir:         "uploads",
		JWTIssuer:         "agenthub",
		JWTAudience:       "agenthub",
		TokenTTL:          24 * time.Hour,
		GatewayTimeout:    60 * time.Second,
		WebhookTolerance:  30 * time.Minute,
		WebhookRateLimit:  120,
		LogLevel:          "info",
	}
}
