package playback

import (
	"github.com/flanksource/understudy/fixtures"
)

// State tracks where an action's playback stands.
type State int

const (
	// Idle means the action exists in the document but was never selected.
	Idle State = iota
	// Armed means the action was selected and no call has arrived yet.
	Armed
	// Consumed means at least one rule was consumed and more remain.
	Consumed
	// Exhausted means every rule was consumed. An action with no rules is
	// exhausted as soon as it is armed.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Consumed:
		return "consumed"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// cursor walks one action's rules in call order.
type cursor struct {
	action *fixtures.Action
	index  int
	state  State
}

func newCursor(action *fixtures.Action) *cursor {
	c := &cursor{action: action, state: Armed}
	if len(action.Rules) == 0 {
		c.state = Exhausted
	}
	return c
}

// expected peeks at the next rule without consuming it.
func (c *cursor) expected() (*fixtures.Rule, bool) {
	if c.index >= len(c.action.Rules) {
		return nil, false
	}
	return &c.action.Rules[c.index], true
}

// advance consumes the current rule.
func (c *cursor) advance() {
	c.index++
	if c.index >= len(c.action.Rules) {
		c.state = Exhausted
	} else {
		c.state = Consumed
	}
}

func (c *cursor) remaining() int {
	return len(c.action.Rules) - c.index
}
