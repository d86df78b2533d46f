package lsp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

const (
	killTimeout     = 5 * time.Second
	readDoneTimeout = time.Second
)

// Server is a language server child process with a connected Client.
type Server struct {
	*Client
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// Start launches command with args in dir and connects a Client to its
// standard streams. The process is killed when ctx is canceled.
func Start(ctx context.Context, command string, args []string, dir string, opts Options) (*Server, error) {
	if command == "" {
		return nil, errors.New("lsp: empty server command")
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	go logLines(stderr, logger.With("stream", "stderr"))

	return &Server{
		Client: NewClient(stdout, stdin, opts),
		cmd:    cmd,
		stdin:  stdin,
	}, nil
}

// Close closes the server's input and waits for the process to exit,
// killing it after killTimeout. A Run loop still reading the server's
// output returns nil.
func (s *Server) Close() error {
	s.markClosing()
	_ = s.stdin.Close()

	waitErr := make(chan error, 1)
	go func() { waitErr <- s.cmd.Wait() }()

	var err error
	select {
	case err = <-waitErr:
	case <-time.After(killTimeout):
		_ = s.cmd.Process.Kill()
		err = <-waitErr
	}

	select {
	case <-s.Done():
	case <-time.After(readDoneTimeout):
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return err
	}
	return nil
}

func logLines(r io.Reader, logger *slog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		logger.Debug(sc.Text())
	}
}
