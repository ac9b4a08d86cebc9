package mcp

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// stopGrace is how long Stop waits for a server to exit after its
// stdin closes before killing it.
const stopGrace = 5 * time.Second

// ServerProcess runs an MCP server as a child process and exposes its
// stdio pipes.
type ServerProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	waitCh chan error
}

// StartServer launches the command with the given args and environment
// overrides. The child's stderr is drained into the log.
func StartServer(ctx context.Context, command string, args []string, env map[string]string) (*ServerProcess, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", command)
	}
	logger.ContextKV(ctx, xlog.DEBUG, "status", "started", "command", command, "pid", cmd.Process.Pid)

	p := &ServerProcess{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		waitCh: make(chan error, 1),
	}
	go drainStderr(command, stderr)
	go func() {
		p.waitCh <- cmd.Wait()
	}()
	return p, nil
}

func drainStderr(command string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.KV(xlog.DEBUG, "server", command, "stderr", scanner.Text())
	}
}

// Stdin is the pipe to write requests to.
func (p *ServerProcess) Stdin() io.Writer {
	return p.stdin
}

// Stdout is the pipe to read responses from.
func (p *ServerProcess) Stdout() io.Reader {
	return p.stdout
}

// Pid returns the child process ID.
func (p *ServerProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Stop closes the child's stdin and waits for it to exit, killing it
// after a grace period.
func (p *ServerProcess) Stop() error {
	_ = p.stdin.Close()

	select {
	case err := <-p.waitCh:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// server exit after stdin close is expected
			return nil
		}
		return err
	case <-time.After(stopGrace):
		logger.KV(xlog.WARNING, "status", "killing_server", "pid", p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		<-p.waitCh
		return nil
	}
}
