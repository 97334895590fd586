package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// UnmarshalYAML accepts duration fields in time.ParseDuration form ("30s",
// "2h"). Fields absent from the file keep their current values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Addr          string `yaml:"addr"`
		JWTSecret     string `yaml:"jwt_secret"`
		APITimeout    string `yaml:"timeout"`
		DatabasePath  string `yaml:"database_path"`
		TokenDuration string `yaml:"token_duration"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Addr != "" {
		c.Addr = raw.Addr
	}
	if raw.JWTSecret != "" {
		c.JWTSecret = raw.JWTSecret
	}
	if raw.DatabasePath != "" {
		c.DatabasePath = raw.DatabasePath
	}
	if raw.APITimeout != "" {
		d, err := time.ParseDuration(raw.APITimeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		c.APITimeout = d
	}
	if raw.TokenDuration != "" {
		d, err := time.ParseDuration(raw.TokenDuration)
		if err != nil {
			return fmt.Errorf("parse token_duration: %w", err)
		}
		c.TokenDuration = d
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("TG_ADDR", ":8080"),
		JWTSecret:     getEnv("TG_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("TG_DATABASE_PATH", "tunnelguard.db"),
		TokenDuration: 1 * time.Hour,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach a deployed
// environment. The insecure default JWT secret is tolerated only when
// TG_ENV=development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if c.JWTSecret == "supersecretkey" && os.Getenv("TG_ENV") != "development" {
		return fmt.Errorf("jwt_secret is the insecure default; set TG_JWT_SECRET")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
