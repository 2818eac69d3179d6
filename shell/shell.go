// Package shell is the seam between a tool and the external commands it
// shells out to. Production code runs commands through a Local; tests swap
// in a playback session so no real process is spawned.
package shell

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
)

// Commander executes a single external command. Implementations must be
// usable for sequential calls from one goroutine; they are not required to
// be safe for concurrent use.
type Commander interface {
	Run(ctx context.Context, command string, opts Options) (*Result, error)
}

// Options control how a single command is executed.
type Options struct {
	// Interactive attaches the command to the parent's stdin/stdout/stderr
	// instead of capturing output. The Result carries only the exit status.
	Interactive bool
	// TolerateError returns a Result for non-zero exits instead of a
	// CommandError, for callers that inspect the exit code themselves.
	TolerateError bool
	// Show echoes the command and streams its output while capturing it.
	Show bool
	// PTY runs the command under a pseudo-terminal and captures the
	// terminal stream. Some tools refuse to talk to plain pipes.
	PTY bool

	Dir     string
	Env     []string
	Timeout time.Duration
}

// Result is the outcome of a command, real or mocked.
type Result struct {
	Command  string        `json:"command" pretty:"label=Command,style=text-cyan-600"`
	Stdout   string        `json:"stdout,omitempty" pretty:"label=Stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty" pretty:"label=Stderr,omitempty"`
	ExitCode int           `json:"exit_code,omitempty" pretty:"label=Exit Code,omitempty"`
	Duration time.Duration `json:"duration,omitempty" pretty:"label=Duration,style=text-yellow-600,omitempty"`
}

// Output returns stdout with the trailing newline trimmed, the form most
// callers compare against.
func (r *Result) Output() string {
	return strings.TrimRight(r.Stdout, "\n")
}

// Combined returns stderr followed by stdout.
func (r *Result) Combined() string {
	return r.Stderr + r.Stdout
}

func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

func (r *Result) String() string {
	return r.Pretty().String()
}

func (r *Result) Pretty() api.Text {
	t := clicky.Text(r.Command, "font-bold")
	if r.ExitCode != 0 {
		t = t.Append(fmt.Sprintf(" exit=%d", r.ExitCode), "text-red-600")
	}
	if r.Duration > 0 {
		t = t.Append(fmt.Sprintf(" (%s)", r.Duration), "text-yellow-600")
	}
	if out := r.Output(); out != "" {
		t = t.NewLine().Append(out, "text-gray-300")
	}
	if r.Stderr != "" {
		t = t.NewLine().Append(strings.TrimRight(r.Stderr, "\n"), "text-red-500")
	}
	return t
}

// CommandError is returned when a command exits non-zero and the caller did
// not ask to tolerate it.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if strings.TrimSpace(e.Stderr) != "" {
		return fmt.Sprintf("command %q exited %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("command %q exited %d", e.Command, e.ExitCode)
}

// DefaultShell returns the shell binary commands run under, honoring
// UNDERSTUDY_SHELL.
func DefaultShell() string {
	if sh := os.Getenv("UNDERSTUDY_SHELL"); sh != "" {
		return sh
	}
	return "sh"
}
