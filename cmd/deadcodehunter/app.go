package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/bubbletea"
	"github.com/fwojciec/deadcodehunter/chroma"
	"github.com/fwojciec/deadcodehunter/editor"
	"github.com/fwojciec/deadcodehunter/fs"
	"github.com/fwojciec/deadcodehunter/jsonl"
	dl "github.com/fwojciec/deadcodehunter/lipgloss"
	"github.com/fwojciec/deadcodehunter/lsp"
	"golang.org/x/sync/errgroup"
)

// ErrNoServer is returned when no language server command is configured.
var ErrNoServer = errors.New("no language server configured")

// shutdownTimeout bounds the shutdown handshake on exit.
const shutdownTimeout = 3 * time.Second

// Session is a connection to a running language server.
type Session interface {
	deadcode.Workspace
	deadcode.TextSource
	deadcode.DocumentSyncer
	Run(ctx context.Context) error
	Initialize(ctx context.Context, root string) error
	Changes() <-chan struct{}
	Shutdown(ctx context.Context) error
	Close() error
}

// ConnectFunc starts a language server for root.
type ConnectFunc func(ctx context.Context, cfg deadcode.Config, root string, logger *slog.Logger) (Session, error)

// App wires the language server, the aggregator and an output.
type App struct {
	Config deadcode.Config
	Root   string
	Logger *slog.Logger

	// Connect defaults to launching Config.ServerCommand.
	Connect ConnectFunc

	// Report mode.
	Output  io.Writer
	Settle  time.Duration
	Timeout time.Duration

	// Interactive mode; nil means the process's standard streams.
	Input     io.Reader
	UIOutput  io.Writer
	ProgramFn func(m tea.Model, opts ...tea.ProgramOption) error
}

func startServer(ctx context.Context, cfg deadcode.Config, root string, logger *slog.Logger) (Session, error) {
	srv, err := lsp.Start(ctx, cfg.ServerCommand, cfg.ServerArgs, root, lsp.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// Run opens the workspace in the language server and shows the tree until
// the user quits.
func (a *App) Run(ctx context.Context) error {
	closeLog, err := a.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	sess, files, err := a.open(gctx, g)
	if err != nil {
		a.abort(sess, cancel, g)
		return err
	}

	if a.Config.Watch {
		w, err := fs.NewWatcher(sess, a.Logger.With("component", "watcher"))
		if err != nil {
			a.Logger.Warn("file watching disabled", "error", err)
		} else {
			for _, f := range files {
				if err := w.Add(f); err != nil {
					a.Logger.Warn("watch failed", "path", f, "error", err)
				}
			}
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	theme := dl.DefaultTheme()
	agg := deadcode.NewAggregator(sess)
	model := bubbletea.NewModel(agg,
		bubbletea.WithTheme(theme),
		bubbletea.WithChanges(sess.Changes()),
		bubbletea.WithOpener(&editor.Opener{Command: a.Config.Editor}),
		bubbletea.WithPreview(sess, sess),
		bubbletea.WithHighlighter(
			chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette())),
			chroma.NewLanguageDetector(),
		),
		bubbletea.WithRoot(a.Root),
	)
	defer model.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(gctx)}
	if a.Input != nil {
		opts = append(opts, tea.WithInput(a.Input))
	}
	if a.UIOutput != nil {
		opts = append(opts, tea.WithOutput(a.UIOutput))
	}
	uiErr := a.program(model, opts...)

	a.finish(sess, cancel)
	waitErr := g.Wait()
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) && !errors.Is(uiErr, tea.ErrInterrupted) {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	return waitErr
}

// Report waits for diagnostics to settle and writes the tree as JSON lines.
func (a *App) Report(ctx context.Context) error {
	closeLog, err := a.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	sess, _, err := a.open(gctx, g)
	if err != nil {
		a.abort(sess, cancel, g)
		return err
	}

	waitErr := a.settle(gctx, sess.Changes())

	agg := deadcode.NewAggregator(sess)
	agg.Refresh()
	out := a.Output
	if out == nil {
		out = os.Stdout
	}
	n, writeErr := jsonl.NewWriter(out).WriteTree(agg)
	a.Logger.Info("report written", "entries", n)

	a.finish(sess, cancel)
	if err := g.Wait(); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}
	if writeErr != nil {
		return fmt.Errorf("write report: %w", writeErr)
	}
	return nil
}

// open resolves the root, starts the server, runs its read loop in g,
// initializes it and opens every discovered file. The session is returned
// with a non-nil error when initialization fails.
func (a *App) open(ctx context.Context, g *errgroup.Group) (Session, []string, error) {
	if a.Config.ServerCommand == "" {
		return nil, nil, ErrNoServer
	}
	root, err := filepath.Abs(a.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	a.Root = root

	files, err := fs.Discover(root, a.Config.Extensions, a.Config.MaxFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("discover files: %w", err)
	}
	a.Logger.Info("discovered files", "root", root, "count", len(files))

	connect := a.Connect
	if connect == nil {
		connect = startServer
	}
	sess, err := connect(ctx, a.Config, root, a.Logger.With("component", "lsp"))
	if err != nil {
		return nil, nil, fmt.Errorf("start language server: %w", err)
	}
	g.Go(func() error {
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("language server connection: %w", err)
		}
		return nil
	})

	if err := sess.Initialize(ctx, root); err != nil {
		return sess, nil, fmt.Errorf("initialize language server: %w", err)
	}

	for _, f := range files {
		text, err := os.ReadFile(f)
		if err != nil {
			a.Logger.Warn("skipping file", "path", f, "error", err)
			continue
		}
		if err := sess.DidOpen(ctx, deadcode.URIFromPath(f), string(text)); err != nil {
			a.Logger.Warn("open failed", "path", f, "error", err)
		}
	}
	return sess, files, nil
}

// settle returns once no change arrived for a.Settle, or when a.Timeout
// elapses.
func (a *App) settle(ctx context.Context, changes <-chan struct{}) error {
	quiet := a.Settle
	if quiet <= 0 {
		quiet = 2 * time.Second
	}
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	var deadline <-chan time.Time
	if a.Timeout > 0 {
		deadline = time.After(a.Timeout)
	}
	for {
		select {
		case <-changes:
			timer.Reset(quiet)
		case <-timer.C:
			return nil
		case <-deadline:
			a.Logger.Warn("diagnostics did not settle before timeout", "timeout", a.Timeout)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) finish(sess Session, cancel context.CancelFunc) {
	ctx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := sess.Shutdown(ctx); err != nil {
		a.Logger.Debug("shutdown", "error", err)
	}
	cancel()
	if err := sess.Close(); err != nil {
		a.Logger.Warn("close language server", "error", err)
	}
}

func (a *App) abort(sess Session, cancel context.CancelFunc, g *errgroup.Group) {
	cancel()
	if sess != nil {
		_ = sess.Close()
	}
	_ = g.Wait()
}

func (a *App) program(m tea.Model, opts ...tea.ProgramOption) error {
	if a.ProgramFn != nil {
		return a.ProgramFn(m, opts...)
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// setupLogger opens the configured log unless a.Logger is already set.
func (a *App) setupLogger() (func(), error) {
	if a.Logger != nil {
		return func() {}, nil
	}
	logger, closer, err := openLogger(a.Config)
	if err != nil {
		return nil, err
	}
	a.Logger = logger
	return func() { _ = closer.Close() }, nil
}
