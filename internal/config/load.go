package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml in the working
// directory and from TASKMAN_-prefixed environment variables. Environment
// variables take precedence over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 7*24*60)
	v.SetDefault("email.from_name", "Task Manager")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from the env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TASKMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind the critical variables; AutomaticEnv alone does not
	// populate keys that are absent from the config file.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "TASKMAN_SERVER_PORT"},
		{"server.log_level", "TASKMAN_SERVER_LOG_LEVEL"},
		{"database.url", "TASKMAN_DATABASE_URL"},
		{"auth.jwt_secret", "TASKMAN_AUTH_JWT_SECRET"},
		{"auth.token_lifetime_minutes", "TASKMAN_AUTH_TOKEN_LIFETIME_MINUTES"},
		{"email.sendgrid_api_key", "TASKMAN_EMAIL_SENDGRID_API_KEY"},
		{"email.from_address", "TASKMAN_EMAIL_FROM_ADDRESS"},
		{"email.from_name", "TASKMAN_EMAIL_FROM_NAME"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
