package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flanksource/understudy/shell"
)

// Commander replays a session through the shell seam. Tests hand it to code
// expecting a shell.Commander and every Run is intercepted against an
// action instead of reaching a real shell.
type Commander struct {
	session *Session
	action  string
}

var _ shell.Commander = (*Commander)(nil)

// Commander returns a shell.Commander that follows the session's current
// selection.
func (s *Session) Commander() *Commander {
	return &Commander{session: s}
}

// CommanderFor returns a shell.Commander pinned to one action, regardless
// of the session's selection.
func (s *Session) CommanderFor(action string) *Commander {
	return &Commander{session: s, action: action}
}

// Run intercepts command. Simulated failures mirror shell.Local: exit code
// 1, suppressed by Options.TolerateError. Sequencing errors (unknown
// action, exhaustion, mismatch) are test failures and are never tolerated.
func (c *Commander) Run(ctx context.Context, command string, opts shell.Options) (*shell.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	action := c.action
	if action == "" {
		action = c.session.current
	}
	if action == "" {
		return nil, fmt.Errorf("no action selected, call Select before running commands")
	}

	start := time.Now()
	rsp, err := c.session.Intercept(action, command)
	if err != nil {
		var failed *CommandFailedError
		if !errors.As(err, &failed) {
			return nil, err
		}
		result := &shell.Result{Command: command, ExitCode: 1, Duration: time.Since(start)}
		if opts.TolerateError {
			return result, nil
		}
		return result, err
	}

	return &shell.Result{
		Command:  command,
		Stdout:   rsp.Stdout(),
		Duration: time.Since(start),
	}, nil
}
