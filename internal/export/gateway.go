package export

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/squash/internal/formatter"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/repositories"
	"github.com/desertthunder/squash/internal/shared"
)

// GatewayOpts configures a [Gateway]. Nil fields get defaults.
type GatewayOpts struct {
	Provider        HandleProvider // Defaults to [TempFileProvider] in the system temp dir
	Trigger         Trigger        // Required
	ArchiveFilename string         // Defaults to [formatter.ArchiveFilename]
	Logger          *log.Logger
}

// Gateway exports single results and the combined archive.
type Gateway struct {
	store       *repositories.ResultStore
	provider    HandleProvider
	trigger     Trigger
	archiveName string
	logger      *log.Logger
	archiving   atomic.Bool
}

// NewGateway creates a gateway reading from store.
func NewGateway(store *repositories.ResultStore, opts GatewayOpts) *Gateway {
	g := &Gateway{
		store:       store,
		provider:    opts.Provider,
		trigger:     opts.Trigger,
		archiveName: opts.ArchiveFilename,
		logger:      opts.Logger,
	}
	if g.provider == nil {
		g.provider = &TempFileProvider{}
	}
	if g.archiveName == "" {
		g.archiveName = formatter.ArchiveFilename
	}
	if g.logger == nil {
		g.logger = shared.NewLogger(nil)
	}
	return g
}

// SetLogger replaces the gateway logger.
func (g *Gateway) SetLogger(l *log.Logger) {
	if l != nil {
		g.logger = l
	}
}

// Archiving reports whether a bulk export is in progress.
func (g *Gateway) Archiving() bool {
	return g.archiving.Load()
}

// ArchiveFilename is the suggested filename for bulk exports.
func (g *Gateway) ArchiveFilename() string {
	return g.archiveName
}

// ExportResult exports one result as "<originalName>.jpg".
//
// The handle is attached to the store entry while live and released before returning, whether or not the trigger
// succeeds.
func (g *Gateway) ExportResult(ctx context.Context, r *models.ConversionResult) error {
	if r == nil {
		return fmt.Errorf("%w: no result", shared.ErrInvalidInput)
	}

	h, err := g.provider.Create(ctx, r.OutputName(), r.Reader())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}
	defer func() {
		if err := g.store.Detach(r.ID(), h); err != nil {
			g.logger.Warn("failed to release export handle", "name", h.Name(), "error", err)
		}
	}()

	if err := g.store.Attach(ctx, r.ID(), h); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}
	if h.Released() {
		return fmt.Errorf("%w: %s is no longer in the result set", shared.ErrExport, r.OutputName())
	}

	if err := g.trigger.Trigger(ctx, h, r.OutputName()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}

	g.logger.Debug("exported result", "name", r.OutputName(), "bytes", h.Size())
	return nil
}

// ExportAt exports the result at index. An out-of-range index returns [shared.ErrInvalidInput].
func (g *Gateway) ExportAt(ctx context.Context, index int) error {
	r, ok, err := g.store.At(ctx, index)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}
	if !ok {
		return fmt.Errorf("%w: no result at index %d", shared.ErrInvalidInput, index)
	}
	return g.ExportResult(ctx, r)
}

// ExportArchive archives a snapshot of the store and exports it under the archive filename.
//
// Returns [shared.ErrBusy] while another bulk export runs. Build failures wrap [shared.ErrArchiveBuild] and leave
// the store untouched; the in-progress state is cleared on every path so the caller can retry.
func (g *Gateway) ExportArchive(ctx context.Context) error {
	if !g.archiving.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: archive export already in progress", shared.ErrBusy)
	}
	defer g.archiving.Store(false)

	snapshot, err := g.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrArchiveBuild, err)
	}
	if len(snapshot) == 0 {
		return fmt.Errorf("%w: no results to archive", shared.ErrInvalidInput)
	}

	var built formatter.ArchiveResult
	select {
	case built = <-formatter.BuildArchiveAsync(ctx, snapshot):
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", shared.ErrArchiveBuild, ctx.Err())
	}
	if built.Err != nil {
		g.logger.Error("archive build failed", "entries", len(snapshot), "error", built.Err)
		return built.Err
	}

	h, err := g.provider.Create(ctx, g.archiveName, bytes.NewReader(built.Data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}
	defer func() {
		if err := h.Release(); err != nil {
			g.logger.Warn("failed to release archive handle", "error", err)
		}
	}()

	if err := g.trigger.Trigger(ctx, h, g.archiveName); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExport, err)
	}

	g.logger.Info("exported archive",
		"name", g.archiveName,
		"entries", built.Entries,
		"size", shared.FormatBytes(uint64(len(built.Data))))
	return nil
}
