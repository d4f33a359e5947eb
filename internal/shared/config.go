package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Archive ArchiveConfig `toml:"archive"`
	Export  ExportConfig  `toml:"export"`
	Logging LoggingConfig `toml:"logging"`
}

// ConvertConfig controls batch fan-out.
type ConvertConfig struct {
	Workers      int     `toml:"workers"`
	DispatchRate float64 `toml:"dispatch_rate"`
	OutputDir    string  `toml:"output_dir"`
}

// ArchiveConfig contains bulk export settings.
type ArchiveConfig struct {
	Filename string `toml:"filename"`
}

// ExportConfig contains transient handle and save settings.
type ExportConfig struct {
	TempDir       string `toml:"temp_dir"`
	OpenAfterSave bool   `toml:"open_after_save"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects values the converter cannot run with.
func (c *Config) Validate() error {
	if c.Convert.Workers < 0 {
		return fmt.Errorf("%w: convert.workers must be >= 0, got %d", ErrInvalidConfig, c.Convert.Workers)
	}
	if c.Convert.DispatchRate < 0 {
		return fmt.Errorf("%w: convert.dispatch_rate must be >= 0, got %v", ErrInvalidConfig, c.Convert.DispatchRate)
	}
	if strings.TrimSpace(c.Archive.Filename) == "" {
		return fmt.Errorf("%w: archive.filename is empty", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding the environment.
//
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values from SQUASH_* environment variables.
//
// Unparseable numbers are ignored so a bad variable never prevents startup.
func (c *Config) ApplyEnv() {
	c.Convert.Workers = getEnvInt("SQUASH_WORKERS", c.Convert.Workers)
	c.Convert.DispatchRate = getEnvFloat("SQUASH_RATE", c.Convert.DispatchRate)
	c.Convert.OutputDir = getEnv("SQUASH_OUTPUT_DIR", c.Convert.OutputDir)
	c.Export.TempDir = getEnv("SQUASH_TEMP_DIR", c.Export.TempDir)
	c.Logging.Level = getEnv("SQUASH_LOG_LEVEL", c.Logging.Level)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
