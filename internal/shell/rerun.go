package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// ErrTimeout is returned by Rerun when the command outlives its budget.
var ErrTimeout = errors.New("command timed out")

// DefaultMaxOutput caps the captured output.
const DefaultMaxOutput = 1 << 20

// Rerun executes script with the shell binary inside a pty so programs emit
// the same diagnostics they show interactively, and returns the combined
// output. On timeout the whole process group is killed and ErrTimeout is
// returned with whatever was captured so far.
func Rerun(ctx context.Context, sh Shell, script string, timeout time.Duration) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", nil
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	newCmd := func() *exec.Cmd {
		cmd := exec.Command(sh.Binary(), "-c", script)
		cmd.Env = append(os.Environ(), "LANG=C", "LC_ALL=C", "OOPS_RERUN=1")
		return cmd
	}
	cmd := newCmd()
	ptyFile, err := startPTY(cmd, true)
	if err != nil && strings.Contains(err.Error(), "Setctty set but Ctty not valid") {
		cmd = newCmd()
		ptyFile, err = startPTY(cmd, false)
	}
	if err != nil {
		return "", err
	}
	defer ptyFile.Close()

	var (
		mu  sync.Mutex
		buf bytes.Buffer
	)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_, _ = io.Copy(&limitedWriter{mu: &mu, buf: &buf, max: DefaultMaxOutput}, ptyFile)
	}()

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var runErr error
	select {
	case <-waitDone:
	case <-runCtx.Done():
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-waitDone
		runErr = ErrTimeout
		if errors.Is(ctx.Err(), context.Canceled) {
			runErr = ctx.Err()
		}
	}

	// The reader sees EIO once the last tty holder exits; background
	// children that keep it open are bounded by a short grace period.
	select {
	case <-readDone:
	case <-time.After(100 * time.Millisecond):
		_ = ptyFile.Close()
		<-readDone
	}

	mu.Lock()
	out := normalize(buf.String())
	mu.Unlock()
	return out, runErr
}

func startPTY(cmd *exec.Cmd, setCTTY bool) (*os.File, error) {
	ptyFile, ttyFile, err := pty.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = ttyFile.Close() }()

	_ = pty.Setsize(ptyFile, &pty.Winsize{Cols: 200, Rows: 50})

	cmd.Stdin = ttyFile
	cmd.Stdout = ttyFile
	cmd.Stderr = ttyFile

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = setCTTY
	// Ctty is a descriptor number in the child, where stdin is the tty.
	cmd.SysProcAttr.Ctty = 0

	if err := cmd.Start(); err != nil {
		_ = ptyFile.Close()
		return nil, err
	}
	return ptyFile, nil
}

type limitedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	// Keep draining so the child never blocks on a full pty.
	return len(p), nil
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
