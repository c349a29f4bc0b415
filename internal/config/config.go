package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// client configuration, resolved from defaults, an optional YAML file
// and environment variables (env wins)
type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration
	ExecTimeout     time.Duration
	DebugAddr       string // empty disables the debug/metrics listener
	CredentialsFile string
	SpeechChunkSize int
	SpeechChunkGap  time.Duration
	RestartLimit    int
	TickInterval    time.Duration
	AutoSaveDelay   time.Duration
}

// optional YAML overlay; pointer fields distinguish "unset" from zero
type fileConfig struct {
	BaseURL         *string `yaml:"base_url"`
	RequestTimeout  *string `yaml:"request_timeout"`
	ExecTimeout     *string `yaml:"exec_timeout"`
	DebugAddr       *string `yaml:"debug_addr"`
	CredentialsFile *string `yaml:"credentials_file"`
	SpeechChunkSize *int    `yaml:"speech_chunk_size"`
	RestartLimit    *int    `yaml:"speech_restart_limit"`
}

// loads configuration, layering INTERVIEWFLOW_CONFIG (if set) over the
// defaults and environment variables over both
func LoadConfig() (*Config, error) {
	config := &Config{
		BaseURL:         "http://localhost:8000",
		RequestTimeout:  30 * time.Second,
		ExecTimeout:     20 * time.Second,
		DebugAddr:       "",
		CredentialsFile: defaultCredentialsFile(),
		SpeechChunkSize: 200,
		SpeechChunkGap:  100 * time.Millisecond,
		RestartLimit:    5,
		TickInterval:    time.Second,
		AutoSaveDelay:   900 * time.Millisecond,
	}

	if path := os.Getenv("INTERVIEWFLOW_CONFIG"); path != "" {
		if err := applyFile(config, path); err != nil {
			return nil, err
		}
	}

	config.BaseURL = getEnvOrDefault("INTERVIEWFLOW_API_URL", config.BaseURL)
	config.DebugAddr = getEnvOrDefault("INTERVIEWFLOW_DEBUG_ADDR", config.DebugAddr)
	config.CredentialsFile = getEnvOrDefault("INTERVIEWFLOW_CREDENTIALS", config.CredentialsFile)
	config.RequestTimeout = getEnvDuration("INTERVIEWFLOW_REQUEST_TIMEOUT", config.RequestTimeout)
	config.ExecTimeout = getEnvDuration("INTERVIEWFLOW_EXEC_TIMEOUT", config.ExecTimeout)
	config.SpeechChunkSize = getEnvInt("INTERVIEWFLOW_SPEECH_CHUNK_SIZE", config.SpeechChunkSize)
	config.RestartLimit = getEnvInt("INTERVIEWFLOW_SPEECH_RESTART_LIMIT", config.RestartLimit)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.BaseURL != nil {
		config.BaseURL = *fc.BaseURL
	}
	if fc.RequestTimeout != nil {
		d, err := time.ParseDuration(*fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}
		config.RequestTimeout = d
	}
	if fc.ExecTimeout != nil {
		d, err := time.ParseDuration(*fc.ExecTimeout)
		if err != nil {
			return fmt.Errorf("invalid exec_timeout: %w", err)
		}
		config.ExecTimeout = d
	}
	if fc.DebugAddr != nil {
		config.DebugAddr = *fc.DebugAddr
	}
	if fc.CredentialsFile != nil {
		config.CredentialsFile = *fc.CredentialsFile
	}
	if fc.SpeechChunkSize != nil {
		config.SpeechChunkSize = *fc.SpeechChunkSize
	}
	if fc.RestartLimit != nil {
		config.RestartLimit = *fc.RestartLimit
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.BaseURL == "" {
		return errors.New("base URL must not be empty")
	}
	if config.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if config.ExecTimeout <= 0 {
		return errors.New("exec timeout must be positive")
	}
	if config.SpeechChunkSize <= 0 {
		return errors.New("speech chunk size must be positive")
	}
	if config.RestartLimit < 0 {
		return errors.New("speech restart limit cannot be negative")
	}
	return nil
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".interviewflow/credentials.json"
	}
	return filepath.Join(home, ".interviewflow", "credentials.json")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
