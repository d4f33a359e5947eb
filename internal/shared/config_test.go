package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Convert.Workers != 0 {
			t.Errorf("expected unbounded workers (0), got %d", config.Convert.Workers)
		}
		if config.Convert.OutputDir != "./converted" {
			t.Errorf("expected output dir ./converted, got %s", config.Convert.OutputDir)
		}
		if config.Archive.Filename != "converted-images.zip" {
			t.Errorf("expected archive filename converted-images.zip, got %s", config.Archive.Filename)
		}
		if config.Logging.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Logging.Level)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Archive.Filename != DefaultConfig().Archive.Filename {
			t.Errorf("created config archive filename doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[convert]
workers = 4
dispatch_rate = 2.5
output_dir = "/tmp/out"

[export]
open_after_save = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Convert.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Convert.Workers)
		}
		if config.Convert.DispatchRate != 2.5 {
			t.Errorf("expected dispatch rate 2.5, got %v", config.Convert.DispatchRate)
		}
		if !config.Export.OpenAfterSave {
			t.Error("expected open_after_save to be true")
		}
		if config.Archive.Filename != "converted-images.zip" {
			t.Errorf("expected missing keys to keep defaults, got archive filename %q", config.Archive.Filename)
		}
	})

	t.Run("LoadConfig rejects negative workers", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[convert]\nworkers = -1\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Convert.Workers = 8
		config.Archive.Filename = "batch.zip"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Convert.Workers != 8 || loaded.Archive.Filename != "batch.zip" {
			t.Errorf("unexpected reloaded config: %+v", loaded)
		}

		if err := SaveConfig(configPath, nil); err == nil {
			t.Error("expected error saving nil config")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SQUASH_WORKERS", "3")
		t.Setenv("SQUASH_RATE", "not-a-number")
		t.Setenv("SQUASH_OUTPUT_DIR", "/srv/out")
		t.Setenv("SQUASH_LOG_LEVEL", "debug")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Convert.Workers != 3 {
			t.Errorf("expected workers from env, got %d", config.Convert.Workers)
		}
		if config.Convert.DispatchRate != 0 {
			t.Errorf("expected bad rate to be ignored, got %v", config.Convert.DispatchRate)
		}
		if config.Convert.OutputDir != "/srv/out" {
			t.Errorf("expected output dir from env, got %s", config.Convert.OutputDir)
		}
		if config.Logging.Level != "debug" {
			t.Errorf("expected debug level from env, got %s", config.Logging.Level)
		}
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, "test.env")
		if err := os.WriteFile(envPath, []byte("SQUASH_TEST_DOTENV=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("SQUASH_TEST_DOTENV") })

		if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("missing env file should be ignored, got %v", err)
		}
		if err := LoadDotEnv(envPath); err != nil {
			t.Fatalf("failed to load env file: %v", err)
		}
		if got := os.Getenv("SQUASH_TEST_DOTENV"); got != "loaded" {
			t.Errorf("expected SQUASH_TEST_DOTENV=loaded, got %q", got)
		}
	})
}
