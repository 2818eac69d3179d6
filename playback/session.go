package playback

import (
	"fmt"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/flanksource/understudy/fixtures"
	"github.com/flanksource/understudy/match"
)

// Call is one intercepted command and the response the session replied
// with. Index is the call's position within its action.
type Call struct {
	Action   string            `json:"action" pretty:"label=Action,style=text-orange-500"`
	Index    int               `json:"index" pretty:"label=Call"`
	Command  string            `json:"command" pretty:"label=Command,style=text-cyan-600"`
	Response fixtures.Response `json:"response"`
	Time     time.Time         `json:"time,omitempty" pretty:"label=At,format=time"`
}

// Session plays one document back against one test. Sessions are
// single-threaded: each test owns its own and shares only the immutable
// document underneath.
type Session struct {
	doc     *fixtures.Document
	matcher *match.Matcher
	cursors map[string]*cursor
	guards  map[string]*match.Guard
	current string
	calls   []Call
}

// NewSession prepares playback of doc.
func NewSession(doc *fixtures.Document) *Session {
	return &Session{
		doc:     doc,
		matcher: match.NewMatcher(doc.MatchOptions()),
		cursors: make(map[string]*cursor, doc.Len()),
		guards:  make(map[string]*match.Guard),
	}
}

// Select arms an action: subsequent intercepts for it are held against its
// rules in order. Re-selecting an armed action is a no-op, cursors never
// rewind.
func (s *Session) Select(action string) error {
	if _, err := s.cursor(action); err != nil {
		return err
	}
	s.current = action
	return nil
}

func (s *Session) cursor(action string) (*cursor, error) {
	if cur, ok := s.cursors[action]; ok {
		return cur, nil
	}
	act, ok := s.doc.Lookup(action)
	if !ok {
		return nil, &UnknownActionError{Action: action, Known: s.doc.ActionNames()}
	}
	cur := newCursor(act)
	s.cursors[action] = cur
	return cur, nil
}

func (s *Session) guard(expr string) (*match.Guard, error) {
	if g, ok := s.guards[expr]; ok {
		return g, nil
	}
	g, err := match.CompileGuard(expr)
	if err != nil {
		return nil, err
	}
	s.guards[expr] = g
	return g, nil
}

// Intercept holds command against the next rule of action and returns the
// canned response. A mismatch does not consume the rule; a matched false
// response consumes it and returns the response with ErrCommandFailed.
func (s *Session) Intercept(action, command string) (fixtures.Response, error) {
	cur, err := s.cursor(action)
	if err != nil {
		return fixtures.Response{}, err
	}

	rule, ok := cur.expected()
	if !ok {
		return fixtures.Response{}, &SequenceExhaustedError{Action: action, Calls: cur.index, Actual: command}
	}

	matched, err := s.matcher.Matches(rule.Pattern, command)
	if err != nil {
		return fixtures.Response{}, err
	}
	if !matched {
		return fixtures.Response{}, &UnexpectedCommandError{Action: action, Index: cur.index, Pattern: rule.Pattern, Actual: command}
	}

	if rule.Expr != "" {
		guard, err := s.guard(rule.Expr)
		if err != nil {
			return fixtures.Response{}, err
		}
		pass, err := guard.Eval(action, command, cur.index)
		if err != nil {
			return fixtures.Response{}, err
		}
		if !pass {
			return fixtures.Response{}, &UnexpectedCommandError{Action: action, Index: cur.index, Pattern: rule.Pattern, Actual: command, Guard: rule.Expr}
		}
	}

	index := cur.index
	cur.advance()
	s.calls = append(s.calls, Call{Action: action, Index: index, Command: command, Response: rule.Response, Time: time.Now()})
	logger.V(4).Infof("intercept %s[%d]: %s -> %s", action, index, command, rule.Response.Kind)

	if !rule.Response.Succeeded() {
		return rule.Response, &CommandFailedError{Action: action, Index: index, Command: command}
	}
	return rule.Response, nil
}

// Expected peeks at the next rule for action without consuming it. Unarmed
// actions peek at their first rule.
func (s *Session) Expected(action string) (*fixtures.Rule, bool) {
	if cur, ok := s.cursors[action]; ok {
		return cur.expected()
	}
	if act, ok := s.doc.Lookup(action); ok && len(act.Rules) > 0 {
		return &act.Rules[0], true
	}
	return nil, false
}

// State reports where an action's playback stands.
func (s *Session) State(action string) State {
	if cur, ok := s.cursors[action]; ok {
		return cur.state
	}
	return Idle
}

// Index reports how many of the action's rules were consumed so far.
func (s *Session) Index(action string) int {
	if cur, ok := s.cursors[action]; ok {
		return cur.index
	}
	return 0
}

// Remaining reports how many rules the action has left.
func (s *Session) Remaining(action string) int {
	if cur, ok := s.cursors[action]; ok {
		return cur.remaining()
	}
	if act, ok := s.doc.Lookup(action); ok {
		return len(act.Rules)
	}
	return 0
}

// Calls returns every intercepted call in order.
func (s *Session) Calls() []Call {
	return s.calls
}

// CallsFor returns the intercepted calls of a single action.
func (s *Session) CallsFor(action string) []Call {
	return lo.Filter(s.calls, func(c Call, _ int) bool { return c.Action == action })
}

// Document returns the document under playback.
func (s *Session) Document() *fixtures.Document {
	return s.doc
}

// Verify fails when a selected action still has unconsumed rules. Actions
// never selected are ignored: documents routinely carry more scenarios than
// one test exercises.
func (s *Session) Verify() error {
	var leftover []string
	for _, action := range s.doc.Actions {
		cur, ok := s.cursors[action.Name]
		if !ok {
			continue
		}
		if rule, ok := cur.expected(); ok {
			leftover = append(leftover, fmt.Sprintf("%s consumed %d of %d, next %q", action.Name, cur.index, len(action.Rules), rule.Pattern))
		}
	}
	if len(leftover) > 0 {
		return fmt.Errorf("unconsumed fixture rules: %s", strings.Join(leftover, "; "))
	}
	return nil
}
