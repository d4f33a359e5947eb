package formatter

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// ArchiveFilename is the suggested filename for bulk exports.
const ArchiveFilename = "converted-images.zip"

// ArchiveResult is delivered by [BuildArchiveAsync]. Exactly one of Data and Err is set.
type ArchiveResult struct {
	Data    []byte
	Entries int
	Err     error
}

// WriteArchive writes one deflated entry per result, named [models.ConversionResult.OutputName].
//
// Colliding names are written as duplicate entries; extractors keep the last one.
// Every failure wraps [shared.ErrArchiveBuild].
func WriteArchive(ctx context.Context, w io.Writer, results []*models.ConversionResult) error {
	zw := zip.NewWriter(w)

	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrArchiveBuild, err)
		}

		header := &zip.FileHeader{
			Name:     r.OutputName(),
			Method:   zip.Deflate,
			Modified: r.CreatedAt(),
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("%w: failed to add %s: %v", shared.ErrArchiveBuild, header.Name, err)
		}
		if _, err := io.Copy(fw, r.Reader()); err != nil {
			return fmt.Errorf("%w: failed to write %s: %v", shared.ErrArchiveBuild, header.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize archive: %v", shared.ErrArchiveBuild, err)
	}
	return nil
}

// BuildArchive builds the archive in memory. On failure no bytes are returned.
func BuildArchive(ctx context.Context, results []*models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteArchive(ctx, &buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildArchiveAsync builds the archive on its own goroutine. The channel receives one value and is closed.
//
// results is read, not copied; callers pass a snapshot.
func BuildArchiveAsync(ctx context.Context, results []*models.ConversionResult) <-chan ArchiveResult {
	out := make(chan ArchiveResult, 1)
	go func() {
		defer close(out)
		data, err := BuildArchive(ctx, results)
		if err != nil {
			out <- ArchiveResult{Err: err}
			return
		}
		out <- ArchiveResult{Data: data, Entries: len(results)}
	}()
	return out
}
