package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"labserve/config"
	"labserve/launcher"
	"labserve/log"
	"labserve/ui"
)

// Options holds the command line overrides. Empty fields keep the configured
// value.
type Options struct {
	BaseDir    string
	ConfigFile string
	Host       string
	LogFile    string

	// Out receives the console output. Defaults to stdout.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// LoadConfig builds the launcher configuration from the optional config file
// and the command line overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}

	base, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	cfg.BaseDir = base

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run is the main entrypoint into the application. It serves every lab until
// ctx is cancelled or the process receives a shutdown signal.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	if err := log.Initialize(cfg.LogFile); err != nil {
		return err
	}
	logPath := log.Path()
	defer func() {
		log.Close()
		fmt.Fprintln(opts.out(), "wrote logs to "+logPath)
	}()
	log.InfoLog.Printf("starting %d labs from %s", len(cfg.Labs), cfg.BaseDir)

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	l := launcher.New(cfg, ui.NewConsole(opts.out()))
	if err := l.Launch(ctx); err != nil {
		return fmt.Errorf("failed to stop labs: %w", err)
	}
	log.InfoLog.Printf("all labs stopped")
	return nil
}

// List prints the lab table and whether each lab's directory is present.
func List(opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	l := launcher.New(cfg, nil)
	statuses := make([]ui.LabStatus, 0, len(cfg.Labs))
	for _, lab := range cfg.Labs {
		path, err := l.Resolve(lab)
		statuses = append(statuses, ui.LabStatus{Lab: lab, Path: path, Present: err == nil})
	}

	_, err = fmt.Fprintln(opts.out(), ui.RenderLabTable(statuses))
	return err
}
