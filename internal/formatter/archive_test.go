package formatter

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
	th "github.com/desertthunder/squash/internal/testing"
)

func readArchive(t *testing.T, data []byte) map[string][]int {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	entries := make(map[string][]int)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		entries[f.Name] = append(entries[f.Name], len(content))
	}
	return entries
}

func TestBuildArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("one entry per result with matching sizes", func(t *testing.T) {
		results := []*models.ConversionResult{
			th.Result("beach", 1000, 120),
			th.Result("forest", 2000, 340),
			th.Result("city.night", 500, 0),
		}

		data, err := BuildArchive(ctx, results)
		if err != nil {
			t.Fatalf("BuildArchive() error = %v", err)
		}

		entries := readArchive(t, data)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d: %v", len(entries), entries)
		}
		for _, r := range results {
			sizes, ok := entries[r.OutputName()]
			if !ok {
				t.Errorf("archive missing %s", r.OutputName())
				continue
			}
			if uint64(sizes[0]) != r.ConvertedSize() {
				t.Errorf("%s: entry size %d, want %d", r.OutputName(), sizes[0], r.ConvertedSize())
			}
		}
	})

	t.Run("colliding names are kept as duplicate entries", func(t *testing.T) {
		results := []*models.ConversionResult{th.Result("same", 10, 3), th.Result("same", 10, 5)}

		data, err := BuildArchive(ctx, results)
		if err != nil {
			t.Fatalf("BuildArchive() error = %v", err)
		}

		sizes := readArchive(t, data)["same.jpg"]
		if len(sizes) != 2 || sizes[0] != 3 || sizes[1] != 5 {
			t.Errorf("same.jpg entries = %v, want [3 5]", sizes)
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		data, err := BuildArchive(ctx, nil)
		if err != nil {
			t.Fatalf("BuildArchive() error = %v", err)
		}
		if len(readArchive(t, data)) != 0 {
			t.Error("expected no entries")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		data, err := BuildArchive(cctx, []*models.ConversionResult{th.Result("a", 10, 2)})
		if !errors.Is(err, shared.ErrArchiveBuild) {
			t.Errorf("expected ErrArchiveBuild, got %v", err)
		}
		if data != nil {
			t.Error("expected no bytes on failure")
		}
	})
}

func TestWriteArchive(t *testing.T) {
	ctx := context.Background()
	results := []*models.ConversionResult{th.Result("a", 10, 2), th.Result("b", 10, 3)}

	t.Run("failing writer", func(t *testing.T) {
		err := WriteArchive(ctx, &th.FWriter{}, results)
		if !errors.Is(err, shared.ErrArchiveBuild) {
			t.Errorf("expected ErrArchiveBuild, got %v", err)
		}
	})

	t.Run("writer fails partway", func(t *testing.T) {
		var buf bytes.Buffer
		w := th.NewLimitedWriter(0, 0, &buf)
		err := WriteArchive(ctx, &w, results)
		if !errors.Is(err, shared.ErrArchiveBuild) {
			t.Errorf("expected ErrArchiveBuild, got %v", err)
		}
	})
}

func TestBuildArchiveAsync(t *testing.T) {
	t.Run("delivers the archive", func(t *testing.T) {
		results := []*models.ConversionResult{th.Result("a", 10, 4)}

		res := <-BuildArchiveAsync(context.Background(), results)
		if res.Err != nil {
			t.Fatalf("BuildArchiveAsync() error = %v", res.Err)
		}
		if res.Entries != 1 || len(readArchive(t, res.Data)) != 1 {
			t.Errorf("expected one entry, got %d", res.Entries)
		}
	})

	t.Run("delivers the failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := <-BuildArchiveAsync(ctx, []*models.ConversionResult{th.Result("a", 10, 4)})
		if !errors.Is(res.Err, shared.ErrArchiveBuild) || res.Data != nil {
			t.Errorf("expected ErrArchiveBuild with no data, got %v", res.Err)
		}
	})
}
