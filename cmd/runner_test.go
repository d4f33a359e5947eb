package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/squash/internal/shared"
	tu "github.com/desertthunder/squash/internal/testing"
)

func newTestRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:      "squash",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"squash"}, args...))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 5), uint8(x + y), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	tu.MustWriteFile(t, path, buf.Bytes())
}

func setupInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "first.png"), 32, 24)
	writePNG(t, filepath.Join(dir, "second.png"), 16, 16)
	tu.MustWriteFile(t, filepath.Join(dir, "readme.txt"), []byte("not an image"))
	return dir
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			fake := tu.NewFakeCodec()

			runner := NewRunner(RunnerOpts{
				Config: config,
				Codec:  fake,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.codec != fake {
				t.Error("expected codec to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.codec == nil {
				t.Error("expected default codec to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		if err := runner.writePlain("Hello %s\n", "World"); err != nil {
			t.Fatalf("writePlain() error = %v", err)
		}
		if output.String() != "Hello World\n" {
			t.Errorf("output = %q", output.String())
		}

		failing := newTestRunner(&tu.FWriter{})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		newTestRunner(output).writePlainHeader("Title")
		if !strings.Contains(output.String(), "Title") || !strings.Contains(output.String(), "═══") {
			t.Errorf("unexpected header: %q", output.String())
		}
	})
}

func TestConvert(t *testing.T) {
	t.Run("saves each converted file", func(t *testing.T) {
		in := setupInputs(t)
		out := filepath.Join(t.TempDir(), "converted")
		output := &bytes.Buffer{}

		if err := runApp(t, newTestRunner(output), "convert", "--out", out, in); err != nil {
			t.Fatalf("convert error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(out, "first.jpg"))
		tu.AssertFileExists(t, filepath.Join(out, "second.jpg"))
		tu.AssertNotExists(t, filepath.Join(out, "readme.jpg"))

		text := output.String()
		if !strings.Contains(text, "Saved 2 of 2 files") {
			t.Errorf("missing save count in output: %s", text)
		}
		if !strings.Contains(text, "Converted: 2/3") {
			t.Errorf("missing summary in output: %s", text)
		}
		if !strings.Contains(text, "readme.txt") {
			t.Errorf("expected unsupported file listed: %s", text)
		}
	})

	t.Run("counts only files that were saved", func(t *testing.T) {
		in := setupInputs(t)
		out := filepath.Join(t.TempDir(), "blocked")
		tu.MustWriteFile(t, out, []byte("a file, not a directory"))
		output := &bytes.Buffer{}

		if err := runApp(t, newTestRunner(output), "convert", "--out", out, in); err != nil {
			t.Fatalf("convert error = %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Saved 0 of 2 files") {
			t.Errorf("expected no saved files in output: %s", text)
		}
		if !strings.Contains(text, "✗ first.jpg") {
			t.Errorf("expected failed save listed: %s", text)
		}
	})

	t.Run("archive with report", func(t *testing.T) {
		in := setupInputs(t)
		out := t.TempDir()

		err := runApp(t, newTestRunner(io.Discard), "convert", "--out", out, "--archive", "--report", "csv", "--workers", "1", in)
		if err != nil {
			t.Fatalf("convert error = %v", err)
		}

		zr, err := zip.OpenReader(filepath.Join(out, "converted-images.zip"))
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}
		defer zr.Close()
		if len(zr.File) != 2 || zr.File[0].Name != "first.jpg" || zr.File[1].Name != "second.jpg" {
			t.Errorf("unexpected archive entries: %v", zr.File)
		}
		tu.AssertNotExists(t, filepath.Join(out, "first.jpg"))

		report := tu.MustReadFile(t, filepath.Join(out, "report.csv"))
		if !strings.Contains(report, "first,first.jpg") {
			t.Errorf("report missing first: %s", report)
		}
	})

	t.Run("no paths", func(t *testing.T) {
		err := runApp(t, newTestRunner(io.Discard), "convert")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("unknown report format", func(t *testing.T) {
		err := runApp(t, newTestRunner(io.Discard), "convert", "--report", "json", setupInputs(t))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("negative workers", func(t *testing.T) {
		err := runApp(t, newTestRunner(io.Discard), "convert", "--workers=-1", setupInputs(t))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestSetupConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	runner := newTestRunner(io.Discard)

	if err := runApp(t, runner, "setup", "config", "--path", path); err != nil {
		t.Fatalf("setup config error = %v", err)
	}
	tu.AssertFileExists(t, path)

	if err := runApp(t, runner, "setup", "config", "--path", path); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag for existing file, got %v", err)
	}

	tu.MustWriteFile(t, path, []byte("[convert]\nworkers = 9\n"))
	if err := runApp(t, runner, "setup", "config", "--path", path, "--force"); err != nil {
		t.Fatalf("setup config --force error = %v", err)
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Convert.Workers != 0 {
		t.Errorf("workers = %d, want defaults restored", config.Convert.Workers)
	}
}
