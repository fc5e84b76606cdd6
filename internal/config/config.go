package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultRole is used when SNOWFLAKE_ROLE is not set.
const DefaultRole = "SALES"

const (
	EnvAccount   = "SNOWFLAKE_ACCOUNT"
	EnvUsername  = "SNOWFLAKE_USERNAME"
	EnvPassword  = "SNOWFLAKE_PASSWORD"
	EnvWarehouse = "SNOWFLAKE_WAREHOUSE"
	EnvDatabase  = "SNOWFLAKE_DATABASE"
	EnvRole      = "SNOWFLAKE_ROLE"
)

// Config holds the Snowflake connection settings loaded from the environment.
type Config struct {
	Account   string
	Username  string
	Password  string
	Warehouse string
	Database  string
	Role      string
}

// MissingEnvVarError reports a required environment variable that was absent
// or empty at startup.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return fmt.Sprintf("missing required environment variable: %s", e.Name)
}

// FromEnv loads the Snowflake configuration from the process environment,
// with an optional .env file in the working directory taking lower
// precedence. It fails before any network activity when a required variable
// is missing.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env is optional
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	get := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg := &Config{
		Account:   get(EnvAccount),
		Username:  get(EnvUsername),
		Password:  get(EnvPassword),
		Warehouse: get(EnvWarehouse),
		Database:  get(EnvDatabase),
		Role:      get(EnvRole),
	}

	for _, req := range []struct {
		name  string
		value string
	}{
		{EnvAccount, cfg.Account},
		{EnvUsername, cfg.Username},
		{EnvPassword, cfg.Password},
		{EnvWarehouse, cfg.Warehouse},
	} {
		if req.value == "" {
			return nil, &MissingEnvVarError{Name: req.name}
		}
	}

	if cfg.Role == "" {
		cfg.Role = DefaultRole
	}

	return cfg, nil
}
