package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/squash/internal/codec"
	"github.com/desertthunder/squash/internal/export"
	"github.com/desertthunder/squash/internal/repositories"
	"github.com/desertthunder/squash/internal/shared"
	"github.com/desertthunder/squash/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	codec  codec.Codec
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Codec  codec.Codec
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Codec == nil {
		opts.Codec = codec.NewImageCodec()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		codec:  opts.Codec,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		convertCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// resolveConfig loads --config when given explicitly and applies per-command flag overrides.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	config := *r.config

	if cmd.IsSet("config") {
		loaded, err := shared.LoadConfig(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		loaded.ApplyEnv()
		config = *loaded
	}

	if cmd.IsSet("workers") {
		config.Convert.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("rate") {
		config.Convert.DispatchRate = cmd.Float("rate")
	}
	if out := cmd.String("out"); out != "" {
		config.Convert.OutputDir = out
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return &config, nil
}

// session wires one run's result store, converter and export gateway.
type session struct {
	store     *repositories.ResultStore
	converter *tasks.BatchConverter
	gateway   *export.Gateway
	trigger   *export.SaveTrigger
}

func (r *Runner) newSession(ctx context.Context, config *shared.Config, open bool) (*session, error) {
	store, err := repositories.OpenResultStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}

	trigger := export.NewSaveTrigger(config.Convert.OutputDir, open)
	return &session{
		store: store,
		converter: tasks.NewBatchConverter(r.codec, store, tasks.BatchOpts{
			Workers:      config.Convert.Workers,
			DispatchRate: config.Convert.DispatchRate,
			Logger:       r.logger,
		}),
		gateway: export.NewGateway(store, export.GatewayOpts{
			Provider:        &export.TempFileProvider{Dir: config.Export.TempDir},
			Trigger:         trigger,
			ArchiveFilename: config.Archive.Filename,
			Logger:          r.logger,
		}),
		trigger: trigger,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
