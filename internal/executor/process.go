package executor

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/pkg/utils"
)

// waitDelay bounds how long Wait blocks on pipes held open by stray
// descendants after the process group was killed.
const waitDelay = 2 * time.Second

// procResult is the raw result of a child process.
type procResult struct {
	stdout   string
	stderr   string
	exitCode int
	status   Status
	err      error
	duration time.Duration
}

// runProcess starts argv in its own process group under dir and waits for it,
// killing the whole group once timeout elapses or ctx is cancelled.
func runProcess(ctx context.Context, timeout time.Duration, dir string, argv []string) procResult {
	if len(argv) == 0 {
		return procResult{status: StatusError, err: errors.New("empty command")}
	}
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			if err == nil {
				err = errors.New("not a directory")
			}
			return procResult{status: StatusError, err: errors.Wrapf(err, "working directory %s unavailable", dir)}
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	res := procResult{
		stdout:   strings.TrimSpace(utils.SanitizeUTF8(stdout.String())),
		stderr:   strings.TrimSpace(utils.SanitizeUTF8(stderr.String())),
		duration: time.Since(start),
		err:      err,
	}

	switch {
	case ctx.Err() != nil:
		res.status = StatusCancelled
		res.err = ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.status = StatusTimeout
		res.err = runCtx.Err()
	case err == nil:
		res.status = StatusOK
	case isNotFound(err):
		res.status = StatusNotFound
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.status = StatusFailed
			res.exitCode = exitErr.ExitCode()
		} else {
			res.status = StatusError
		}
	}
	return res
}

// isNotFound reports a missing executable. The working directory is checked
// before start, so fs.ErrNotExist here refers to the binary path.
func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
