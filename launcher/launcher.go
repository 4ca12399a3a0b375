// Package launcher starts one static file server per configured lab and stops
// them all together.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"labserve/config"
	"labserve/log"
	"labserve/ui"
	"labserve/web"
)

var (
	// ErrMissingDirectory means a lab's directory does not exist; the lab is skipped.
	ErrMissingDirectory = errors.New("lab directory not found")
	// ErrBind means a lab's port could not be bound; only that lab is affected.
	ErrBind = errors.New("failed to bind lab port")
)

// ShutdownTimeout bounds how long Launch waits for labs to stop.
const ShutdownTimeout = 5 * time.Second

// Launcher owns the lab table and every handle it has started.
type Launcher struct {
	cfg      *config.Config
	reporter ui.Reporter

	mu      sync.Mutex
	handles []*Handle
	stopped bool
}

// New creates a launcher for cfg. A nil reporter discards progress output.
func New(cfg *config.Config, reporter ui.Reporter) *Launcher {
	if reporter == nil {
		reporter = ui.NewConsole(io.Discard)
	}
	return &Launcher{
		cfg:      cfg,
		reporter: reporter,
	}
}

// Resolve returns the absolute directory for lab. When the directory is
// missing, the path is still returned along with ErrMissingDirectory.
func (l *Launcher) Resolve(lab config.LabEntry) (string, error) {
	path, err := l.cfg.Resolve(lab)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, fmt.Errorf("%w: %s", ErrMissingDirectory, path)
		}
		return path, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, fmt.Errorf("%w: %s is not a directory", ErrMissingDirectory, path)
	}
	return path, nil
}

// Serve binds lab's port and serves path in the background. The bind happens
// before Serve returns so a taken port is reported to the caller.
func (l *Launcher) Serve(ctx context.Context, lab config.LabEntry, path string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lab %s not started: %w", lab.Name, err)
	}
	server := web.NewServer(lab, path)
	if err := server.Listen(ctx, l.cfg.Host); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("lab %s not started: %w", lab.Name, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrBind, lab.Name, err)
	}

	h := &Handle{
		Lab:    lab,
		Root:   path,
		server: server,
		host:   l.cfg.Host,
		done:   make(chan struct{}),
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		_ = server.Stop(ctx)
		return nil, fmt.Errorf("lab %s: launcher is shut down", lab.Name)
	}
	l.handles = append(l.handles, h)
	l.mu.Unlock()

	go func() {
		defer close(h.done)
		if err := server.Serve(); err != nil {
			h.err = err
			log.ErrorLog.Printf("lab %s stopped serving: %v", lab.Name, err)
			l.reporter.Failed(lab, err)
		}
	}()

	log.InfoLog.Printf("lab %s serving %s on %s", h.Lab.Name, h.Root, h.Addr())
	return h, nil
}

// Start brings up every lab in the table concurrently and returns the handles
// that started, in table order. Missing directories are skipped and bind
// failures are reported; neither stops the other labs.
func (l *Launcher) Start(ctx context.Context) []*Handle {
	started := make([]*Handle, len(l.cfg.Labs))

	var wg sync.WaitGroup
	for i, lab := range l.cfg.Labs {
		wg.Add(1)
		go func(i int, lab config.LabEntry) {
			defer wg.Done()

			path, err := l.Resolve(lab)
			if errors.Is(err, ErrMissingDirectory) {
				log.WarningLog.Printf("skipping lab %s: %v", lab.Name, err)
				l.reporter.Skipped(lab, path)
				return
			}
			if err != nil {
				log.ErrorLog.Printf("lab %s: %v", lab.Name, err)
				l.reporter.Failed(lab, err)
				return
			}

			h, err := l.Serve(ctx, lab, path)
			if err != nil && ctx.Err() != nil {
				// Interrupted while starting; not a lab failure.
				log.InfoLog.Printf("%v", err)
				return
			}
			if err != nil {
				log.ErrorLog.Printf("lab %s: %v", lab.Name, err)
				l.reporter.Failed(lab, err)
				return
			}
			l.reporter.Started(lab, h.URL())
			started[i] = h
		}(i, lab)
	}
	wg.Wait()

	handles := make([]*Handle, 0, len(started))
	for _, h := range started {
		if h != nil {
			handles = append(handles, h)
		}
	}
	return handles
}

// Launch starts every lab and blocks until ctx is cancelled, then stops them.
func (l *Launcher) Launch(ctx context.Context) error {
	l.reporter.Banner()
	handles := l.Start(ctx)
	l.reporter.Serving(len(handles), len(l.cfg.Labs))

	<-ctx.Done()
	log.InfoLog.Printf("shutting down %d labs", len(handles))
	l.reporter.ShuttingDown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return l.Shutdown(shutdownCtx)
}

// running returns a snapshot of the started handles.
func (l *Launcher) running() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Handle(nil), l.handles...)
}

// Shutdown stops every handle in parallel. Calling it again is a no-op.
func (l *Launcher) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	handles := append([]*Handle(nil), l.handles...)
	l.mu.Unlock()

	var g errgroup.Group
	for _, h := range handles {
		h := h
		g.Go(func() error {
			if err := h.Shutdown(ctx); err != nil {
				log.ErrorLog.Printf("failed to stop lab %s: %v", h.Lab.Name, err)
				return fmt.Errorf("failed to stop lab %s: %w", h.Lab.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
