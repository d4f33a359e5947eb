package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/squash/internal/shared"
)

// Trigger delivers a live handle to the user under filename.
type Trigger interface {
	Trigger(ctx context.Context, h *Handle, filename string) error
}

// TriggerFunc adapts a function to [Trigger].
type TriggerFunc func(ctx context.Context, h *Handle, filename string) error

func (f TriggerFunc) Trigger(ctx context.Context, h *Handle, filename string) error {
	return f(ctx, h, filename)
}

// SaveTrigger copies handles into Dir. An existing file with the same name is replaced.
type SaveTrigger struct {
	Dir  string
	Open bool // Open the saved file with the system handler

	opener func(path string) error
}

// NewSaveTrigger creates a trigger writing into dir.
func NewSaveTrigger(dir string, open bool) *SaveTrigger {
	return &SaveTrigger{Dir: dir, Open: open, opener: shared.OpenPath}
}

// PathFor is where filename will be saved.
func (t *SaveTrigger) PathFor(filename string) string {
	return filepath.Join(t.Dir, filepath.Base(filename))
}

func (t *SaveTrigger) Trigger(ctx context.Context, h *Handle, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	src, err := h.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dest := t.PathFor(filename)
	tmp, err := os.CreateTemp(t.Dir, ".squash-save-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dest)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}

	if t.Open && t.opener != nil {
		if err := t.opener(dest); err != nil {
			return err
		}
	}
	return nil
}
