package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the validated configuration the server core consumes. Defaults
// are overlaid by an optional YAML file, then environment variables, then
// command-line flags.
type Config struct {
	// ListenPort is the TCP port to bind; 0 asks the kernel for an ephemeral
	// port, reported on stderr once bound.
	ListenPort int `yaml:"listen_port"`
	// MaxConnections caps simultaneously active clients; 0 means unbounded.
	MaxConnections int `yaml:"max_connections"`
	// WSAddr, when non-empty, additionally serves the protocol over
	// websocket on this HTTP address.
	WSAddr string `yaml:"ws_addr"`
	// SweepIntervalMS is the expiry sweep period in milliseconds.
	SweepIntervalMS int `yaml:"sweep_interval_ms"`
}

func defaultConfig() Config {
	return Config{SweepIntervalMS: 100}
}

func (c Config) sweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// loadConfig builds the layered configuration, flags excluded; parseArgs
// applies those last.
func loadConfig() (Config, error) {
	config := defaultConfig()

	if path := os.Getenv("AUCTIONHOUSE_CONFIG"); path != "" {
		if err := loadConfigFile(path, &config); err != nil {
			return config, err
		}
	}

	config.ListenPort = getEnvAsInt("LISTEN_PORT", config.ListenPort)
	config.MaxConnections = getEnvAsInt("MAX_CONNECTIONS", config.MaxConnections)
	config.WSAddr = getEnv("WS_ADDR", config.WSAddr)
	config.SweepIntervalMS = getEnvAsInt("SWEEP_INTERVAL_MS", config.SweepIntervalMS)

	return config, nil
}
