package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/anBertoli/snap-share/pkg/auth"
)

var (
	version = "<unknown>"
)

// Define a config struct to hold all the configuration settings for our application.
// We will read in these configuration settings from a config file when the
// application starts. A few secrets can be overridden from the environment.
type config struct {
	Port int    `json:"port"`
	Env  string `json:"env"`
	Db   struct {
		Dsn          string   `json:"dsn"`
		MaxOpenConns int      `json:"max_open_conns"`
		MaxIdleConns int      `json:"max_idle_conns"`
		MaxIdleTime  duration `json:"max_idle_time"`
		AutoMigrate  bool     `json:"auto_migrate"`
	} `json:"db"`
	Jwt struct {
		Secret    string   `json:"secret"`
		Algorithm string   `json:"algorithm"`
		TokenTTL  duration `json:"token_ttl"`
		ResetTTL  duration `json:"reset_ttl"`
	} `json:"jwt"`
	Metrics struct {
		MetricsEndpoint string `json:"metrics-endpoint"`
	} `json:"metrics"`
	Smtp struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		Sender   string `json:"sender"`
	} `json:"smtp"`
	Cors struct {
		TrustedOrigins []string `json:"trusted_origins"`
	} `json:"cors"`
	DisplayVersion bool // not from config file
}

// A time.Duration read from a string like "15m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	d.Duration, err = time.ParseDuration(s)
	return err
}

// Parse command line flags and read in the config file at the provided path.
func parseConfig() (config, error) {
	version := flag.Bool("version", false, "Display version and exit")
	configPath := flag.String("config", "./conf/api.dev.json", "Path to config file")
	envPath := flag.String("env-file", ".env", "Path to an optional dotenv file")
	flag.Parse()

	// Variables already set in the environment win over the file.
	err := godotenv.Load(*envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, err
	}

	cfg, err := loadConfig(*configPath, os.Getenv)
	if err != nil {
		return config{}, err
	}

	// This is not from the config file.
	cfg.DisplayVersion = *version

	return cfg, nil
}

// Read the config file, apply the environment overrides and validate the result.
func loadConfig(path string, getenv func(string) string) (config, error) {
	var cfg config

	configBytes, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	err = json.Unmarshal(configBytes, &cfg)
	if err != nil {
		return config{}, err
	}

	if v := getenv("JWT_SECRET"); v != "" {
		cfg.Jwt.Secret = v
	}
	if v := getenv("JWT_ALG"); v != "" {
		cfg.Jwt.Algorithm = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.Db.Dsn = v
	}

	if cfg.Metrics.MetricsEndpoint == "" {
		cfg.Metrics.MetricsEndpoint = "/metrics"
	}

	return cfg, cfg.validate()
}

func (cfg config) validate() error {
	if cfg.Db.Dsn == "" {
		return errors.New("config: db dsn must be provided")
	}
	if cfg.Jwt.TokenTTL.Duration <= 0 {
		return errors.New("config: jwt token_ttl must be positive")
	}
	if cfg.Jwt.ResetTTL.Duration <= 0 {
		return errors.New("config: jwt reset_ttl must be positive")
	}
	_, err := auth.NewTokenService(cfg.authConfig())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (cfg config) authConfig() auth.Config {
	return auth.Config{
		Secret:    cfg.Jwt.Secret,
		Algorithm: cfg.Jwt.Algorithm,
	}
}
