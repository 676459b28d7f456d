package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/botfelt/botfelt/internal/botwire"
)

// stopGrace is how long a child gets between interrupt and kill.
const stopGrace = time.Second

// process is one managed bot subprocess. Frames go down stdin, replies
// come back on stdout, and stderr drains to the log so bot
// diagnostics stay visible without touching the protocol stream.
type process struct {
	id  string
	cmd *exec.Cmd

	stdin io.WriteCloser
	mu    sync.Mutex // serializes stdin writes and stop

	frames chan *botwire.Frame
	done   chan struct{}

	logger  *log.Logger
	exitErr error
}

// startProcess launches the bot command and begins pumping its pipes.
func startProcess(ctx context.Context, command string, args []string, env []string, logger *log.Logger) (*process, error) {
	p := &process{
		id:     uuid.NewString()[:8],
		frames: make(chan *botwire.Frame, 1),
		done:   make(chan struct{}),
	}
	p.logger = logger.With("process", p.id)

	p.cmd = exec.CommandContext(ctx, command, args...)
	p.cmd.Env = append(os.Environ(), env...)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	p.stdin = stdin

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", command, err)
	}
	p.logger.Debug("Bot process started", "command", command, "args", args, "pid", p.cmd.Process.Pid)

	stdoutDone := make(chan struct{})
	go p.readFrames(stdout, stdoutDone)
	go p.readStderr(stderr)
	go p.monitor(stdoutDone)

	return p, nil
}

// pid returns the child's process id for resource probes.
func (p *process) pid() int32 {
	return int32(p.cmd.Process.Pid)
}

// send writes one frame to the bot's stdin.
func (p *process) send(typ botwire.FrameType, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return botwire.Encode(p.stdin, typ, payload)
}

// alive reports whether the child is still running.
func (p *process) alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// kill terminates the child immediately. Used when a decision limit
// is violated and the child can no longer be trusted to answer.
func (p *process) kill() {
	if !p.alive() {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Debug("Kill failed", "error", err)
	}
	<-p.done
}

// stop shuts the child down gracefully: interrupt first, kill after
// the grace period.
func (p *process) stop() error {
	if !p.alive() {
		return nil
	}
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// The child may have exited on the shutdown frame already.
		if !p.alive() {
			return nil
		}
		p.kill()
		return nil
	}
	select {
	case <-p.done:
	case <-time.After(stopGrace):
		p.logger.Debug("Grace period expired, killing bot process")
		p.kill()
	}
	return nil
}

// readFrames pumps decoded reply frames until the stream ends or a
// line fails to decode. A decode failure closes the channel early,
// which the harness treats as a protocol breach.
func (p *process) readFrames(stdout io.Reader, done chan<- struct{}) {
	defer close(done)
	defer close(p.frames)

	reader := botwire.NewReader(stdout)
	for {
		frame, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && p.alive() {
				p.logger.Debug("Bot reply stream broke", "error", err)
			}
			return
		}
		select {
		case p.frames <- frame:
		default:
			// Replies only come when asked for. A bot flooding its
			// stdout must not be able to wedge the reaper.
			p.logger.Debug("Dropping unsolicited bot frame", "type", frame.Type)
		}
	}
}

// readStderr forwards the bot's diagnostics to the log line by line.
func (p *process) readStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			p.logger.Debug("Bot stderr", "line", line)
		}
	}
}

// monitor reaps the child. It waits for the stdout pump first so a
// reply written just before exit is not lost to the pipe teardown in
// Wait.
func (p *process) monitor(stdoutDone <-chan struct{}) {
	<-stdoutDone
	err := p.cmd.Wait()

	p.exitErr = err
	close(p.done)

	switch {
	case err == nil:
		p.logger.Debug("Bot process exited")
	case isSignalExit(err):
		p.logger.Debug("Bot process terminated by signal", "error", err)
	default:
		p.logger.Debug("Bot process exited with error", "error", err)
	}
}

// isSignalExit reports whether err is an exit caused by one of the
// signals stop and kill send, which is expected during shutdown.
func isSignalExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	s := exitErr.String()
	return strings.Contains(s, "signal: killed") ||
		strings.Contains(s, "signal: terminated") ||
		strings.Contains(s, "signal: interrupt")
}
