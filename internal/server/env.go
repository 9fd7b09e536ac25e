package server

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/san-kum/driftfield/internal/config"
)

const (
	DefaultAddr = ":8080"

	EnvAddr   = "DRIFTFIELD_ADDR"
	EnvConfig = "DRIFTFIELD_CONFIG"
)

// Env is the process environment the server reads at start-up.
type Env struct {
	Addr       string
	ConfigPath string
}

// LoadEnv reads .env if present, then the environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return Env{
		Addr:       getEnv(EnvAddr, DefaultAddr),
		ConfigPath: getEnv(EnvConfig, ""),
	}
}

// Config loads the YAML file named by ConfigPath, or the defaults when
// none is set.
func (e Env) Config() (*config.Config, error) {
	if e.ConfigPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(e.ConfigPath)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
