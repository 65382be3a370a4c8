// Package config loads server configuration from an optional YAML file and
// the environment. Defaults are chosen so the binary runs with no config at
// all.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	} `mapstructure:"server"`

	Store struct {
		// Backend is "jsonfile" or "sqlite".
		Backend string `mapstructure:"backend"`
		// DataDir holds the per-customer JSON files (jsonfile backend).
		DataDir string `mapstructure:"data_dir"`
		// SQLitePath is the database file (sqlite backend).
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"store"`

	Billing struct {
		// DefaultPolicy is the payment policy used when a request does not
		// select one: "approved_only" for the gated web deployment,
		// "all" for offline ledgers.
		DefaultPolicy string `mapstructure:"default_policy"`
	} `mapstructure:"billing"`
}

func Load(path string) *Config {
	// .env is optional; ignore a missing file.
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("store.backend", "jsonfile")
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("store.sqlite_path", "./rental.db")
	v.SetDefault("billing.default_policy", "approved_only")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("[config] no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.Store.DataDir = dir
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}

	return &cfg
}
