package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const maxLineBytes = 1024 * 1024

// waitDelay is how long Wait keeps reading output after the process was
// killed or exited while a descendant still holds its pipes.
const waitDelay = 3 * time.Second

// Runner executes an external command and returns everything it printed.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (string, error)
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecRunner runs commands with os/exec, reading stdout and stderr line by
// line while the process is alive.
type ExecRunner struct {
	// OnLine, when set, sees every line as it arrives. stream is "stdout" or "stderr".
	OnLine func(stream, line string)
}

func (r *ExecRunner) Run(ctx context.Context, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Cancellation must also reach children such as ffmpeg, which inherit
	// the output pipes; WaitDelay bounds the wait for those pipes to close.
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	var (
		mu  sync.Mutex
		out strings.Builder
		wg  sync.WaitGroup
	)
	collect := func(stream string, rd io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(rd)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		scanner.Split(scanLines)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			mu.Lock()
			out.WriteString(line)
			out.WriteByte('\n')
			mu.Unlock()

			slog.Debug("yt-dlp output", "stream", stream, "line", line)
			if r.OnLine != nil {
				r.OnLine(stream, line)
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("yt-dlp output read failed", "stream", stream, "err", err)
			// Keep the pipe drained so the process cannot block on a full buffer.
			_, _ = io.Copy(io.Discard, rd)
		}
	}

	wg.Add(2)
	go collect("stdout", stdoutR)
	go collect("stderr", stderrR)

	var waitErr error
	if err := cmd.Start(); err != nil {
		waitErr = fmt.Errorf("start %s: %w", name, err)
	} else {
		waitErr = cmd.Wait()
	}
	_ = stdoutW.Close()
	_ = stderrW.Close()
	wg.Wait()

	captured := out.String()
	if cmd.Process == nil {
		return captured, waitErr
	}

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return captured, fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return captured, &ExitError{Code: exitErr.ExitCode(), Err: waitErr}
		}
		return captured, waitErr
	}
	return captured, nil
}

// scanLines splits on \n and on bare \r, which yt-dlp uses to redraw
// progress lines in place.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
