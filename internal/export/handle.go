package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/desertthunder/squash/internal/shared"
)

// Handle is a transient reference to exported bytes. Release is idempotent.
type Handle struct {
	mu       sync.Mutex
	id       string
	name     string
	path     string
	size     int64
	cleanup  func() error
	released bool
}

// NewHandle wraps a materialized resource. cleanup runs on the first Release and may be nil.
func NewHandle(name, path string, size int64, cleanup func() error) *Handle {
	return &Handle{
		id:      shared.GenerateID(),
		name:    name,
		path:    path,
		size:    size,
		cleanup: cleanup,
	}
}

func (h *Handle) ID() string   { return h.id }
func (h *Handle) Name() string { return h.name }
func (h *Handle) Path() string { return h.path }
func (h *Handle) Size() int64  { return h.size }

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Open reads the handle's bytes. Fails once the handle is released.
func (h *Handle) Open() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, fmt.Errorf("%w: handle %s already released", shared.ErrExport, h.name)
	}
	return os.Open(h.path)
}

func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	if h.cleanup == nil {
		return nil
	}
	return h.cleanup()
}

// HandleProvider materializes bytes as a [Handle].
type HandleProvider interface {
	Create(ctx context.Context, name string, r io.Reader) (*Handle, error)
}

// TempFileProvider stores handles as temp files under Dir ([os.TempDir] when empty).
type TempFileProvider struct {
	Dir string
}

func (p *TempFileProvider) Create(ctx context.Context, name string, r io.Reader) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.Dir != "" {
		if err := os.MkdirAll(p.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	pattern := "squash-*-" + strings.ReplaceAll(name, string(os.PathSeparator), "_")
	f, err := os.CreateTemp(p.Dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	path := f.Name()
	return NewHandle(name, path, n, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove temp file: %w", err)
		}
		return nil
	}), nil
}
