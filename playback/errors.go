package playback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	// ErrUnknownAction marks a selection of an action the document does not
	// define.
	ErrUnknownAction = errors.New("unknown action")
	// ErrSequenceExhausted marks a call arriving after every rule of the
	// action was consumed.
	ErrSequenceExhausted = errors.New("sequence exhausted")
	// ErrUnexpectedCommand marks a call that does not match the next
	// expected rule.
	ErrUnexpectedCommand = errors.New("unexpected command")
	// ErrCommandFailed marks a simulated command failure, from a rule whose
	// response is false.
	ErrCommandFailed = errors.New("command failed")
)

// UnknownActionError reports a selection miss along with the actions the
// document does define.
type UnknownActionError struct {
	Action string
	Known  []string
}

func (e *UnknownActionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown action %q, document has no actions", e.Action)
	}
	return fmt.Sprintf("unknown action %q, fixture defines: %s", e.Action, strings.Join(e.Known, ", "))
}

func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// SequenceExhaustedError reports a call past the end of an action's rules.
type SequenceExhaustedError struct {
	Action string
	Calls  int
	Actual string
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("action %q is exhausted after %d calls, got %q", e.Action, e.Calls, e.Actual)
}

func (e *SequenceExhaustedError) Is(target error) bool { return target == ErrSequenceExhausted }

// UnexpectedCommandError reports a call that failed the next rule, either on
// its pattern or on its guard. Index is the zero-based call position within
// the action.
type UnexpectedCommandError struct {
	Action  string
	Index   int
	Pattern string
	Actual  string
	// Guard is set when the pattern matched but the CEL guard rejected the
	// call.
	Guard string
}

func (e *UnexpectedCommandError) Error() string {
	msg := fmt.Sprintf("action %q call %d: expected %q, got %q", e.Action, e.Index, e.Pattern, e.Actual)
	if e.Guard != "" {
		msg = fmt.Sprintf("action %q call %d: guard %s rejected %q", e.Action, e.Index, e.Guard, e.Actual)
	}
	return msg
}

func (e *UnexpectedCommandError) Is(target error) bool { return target == ErrUnexpectedCommand }

// Diff renders an inline character diff of expected pattern vs actual
// command, with [-removed-] and [+added+] markers.
func (e *UnexpectedCommandError) Diff() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(e.Pattern, e.Actual, false)

	var b strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + diff.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("[+" + diff.Text + "+]")
		default:
			b.WriteString(diff.Text)
		}
	}
	return b.String()
}

func (e *UnexpectedCommandError) Pretty() api.Text {
	t := clicky.Text("unexpected command", "text-red-600 font-bold").
		Append(fmt.Sprintf(" in %s call %d", e.Action, e.Index), "text-gray-500").
		NewLine()

	dmp := diffmatchpatch.New()
	for _, diff := range dmp.DiffMain(e.Pattern, e.Actual, false) {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			t = t.Append(diff.Text, "text-red-500 line-through")
		case diffmatchpatch.DiffInsert:
			t = t.Append(diff.Text, "text-green-500")
		default:
			t = t.Append(diff.Text, "text-gray-300")
		}
	}
	if e.Guard != "" {
		t = t.NewLine().Append("guard: ", "text-gray-500").Append(e.Guard, "italic")
	}
	return t
}

// CommandFailedError is the simulated failure produced by a false response.
type CommandFailedError struct {
	Action  string
	Index   int
	Command string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command failed: action %q call %d: %s", e.Action, e.Index, e.Command)
}

func (e *CommandFailedError) Is(target error) bool { return target == ErrCommandFailed }
