package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
)

// Local runs commands on the host through a shell, `<shell> -c <command>`.
type Local struct {
	// Shell overrides the binary used for -c execution; DefaultShell() when empty.
	Shell string
	// Dir is the working directory for commands that don't set their own.
	Dir string
	// Env is appended to the parent environment for every command.
	Env []string
}

var _ Commander = (*Local)(nil)

func (l *Local) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	shellBin := lo.CoalesceOrEmpty(l.Shell, DefaultShell())

	cmd := exec.CommandContext(ctx, shellBin, "-c", command)
	cmd.Dir = lo.CoalesceOrEmpty(opts.Dir, l.Dir)
	if len(l.Env) > 0 || len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), append(l.Env, opts.Env...)...)
	}

	if opts.Show {
		fmt.Fprintln(os.Stderr, command)
	}
	logger.V(4).Infof("exec: %s", command)

	start := time.Now()
	result := &Result{Command: command}

	switch {
	case opts.Interactive:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		result.Duration = time.Since(start)
		return finish(result, opts, err)

	case opts.PTY:
		out, err := runPTY(cmd)
		result.Stdout = out
		result.Duration = time.Since(start)
		if opts.Show && out != "" {
			fmt.Fprint(os.Stderr, out)
		}
		return finish(result, opts, err)

	default:
		var stdout, stderr bytes.Buffer
		if opts.Show {
			cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
			cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
		} else {
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
		}
		err := cmd.Run()
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.Duration = time.Since(start)
		return finish(result, opts, err)
	}
}

// finish folds the exec error into the Result, honoring TolerateError.
func finish(result *Result, opts Options, err error) (*Result, error) {
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if opts.TolerateError {
			return result, nil
		}
		return result, &CommandError{Command: result.Command, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	return nil, fmt.Errorf("failed to run %q: %w", result.Command, err)
}

// runPTY executes the command under a pseudo-terminal and captures the
// terminal stream. The copy loop ends with EIO once the child exits; that is
// the normal pty teardown, not a failure.
func runPTY(cmd *exec.Cmd) (string, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var out bytes.Buffer
	_, _ = io.Copy(&out, ptmx)
	return out.String(), cmd.Wait()
}
