package fixtures

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/samber/lo"

	"github.com/flanksource/understudy/match"
)

// Document is an ordered fixture table: action name -> expected call
// sequence. A document is immutable once loaded; share it freely across
// tests and give each test its own playback session.
type Document struct {
	Actions []Action `json:"actions"`
	// Source is the file the document was loaded from, kept for diagnostics.
	Source string `json:"source,omitempty"`
	// Options come from front-matter or load options.
	Options DocumentOptions `json:"options,omitempty"`
}

// DocumentOptions adjust how a document is parsed and matched. In markdown
// fixtures they double as the front-matter shape.
type DocumentOptions struct {
	// NormalizeWhitespace overrides the matcher default (on) for documents
	// whose patterns rely on exact spacing.
	NormalizeWhitespace *bool `yaml:"normalizeWhitespace,omitempty" json:"normalizeWhitespace,omitempty"`
	// Vars are rendered into the raw document with gomplate before parsing,
	// so fixtures can share namespaces, release names and paths.
	Vars map[string]any `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// Option adjusts how a document is loaded.
type Option func(*DocumentOptions)

// WithVars sets template values rendered into the document before parsing.
func WithVars(vars map[string]any) Option {
	return func(o *DocumentOptions) {
		if o.Vars == nil {
			o.Vars = make(map[string]any, len(vars))
		}
		for k, v := range vars {
			o.Vars[k] = v
		}
	}
}

// WithWhitespaceNormalization overrides whitespace normalization for both
// patterns and intercepted commands.
func WithWhitespaceNormalization(enabled bool) Option {
	return func(o *DocumentOptions) {
		o.NormalizeWhitespace = lo.ToPtr(enabled)
	}
}

// Action groups the ordered call rules for one named scenario, e.g. deploy
// or stop. The name is an opaque key; the set of actions is open.
type Action struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Rule pairs a command pattern with its canned response. Order within an
// action is significant: rules are consumed first-in-first-matched, never
// searched.
type Rule struct {
	// Pattern matches the intercepted command; always a regular expression,
	// anchored at the start.
	Pattern string `yaml:"cmd" json:"cmd"`
	// Response is returned when the pattern matches.
	Response Response `yaml:"rsp" json:"rsp"`
	// Expr is an optional CEL guard evaluated against the intercepted call.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// Lookup returns the named action, if present.
func (d *Document) Lookup(name string) (*Action, bool) {
	for i := range d.Actions {
		if d.Actions[i].Name == name {
			return &d.Actions[i], true
		}
	}
	return nil, false
}

// ActionNames returns the action names in document order.
func (d *Document) ActionNames() []string {
	return lo.Map(d.Actions, func(a Action, _ int) string { return a.Name })
}

func (d *Document) Len() int {
	return len(d.Actions)
}

// MatchOptions resolves the document's matcher configuration.
func (d *Document) MatchOptions() match.Options {
	opts := match.DefaultOptions()
	if d.Options.NormalizeWhitespace != nil {
		opts.NormalizeWhitespace = *d.Options.NormalizeWhitespace
	}
	return opts
}

// compile validates every pattern and guard eagerly so a bad document fails
// at load time, not in the middle of a test.
func (d *Document) compile() error {
	matcher := match.NewMatcher(d.MatchOptions())
	for _, action := range d.Actions {
		for i, rule := range action.Rules {
			if err := matcher.Compile(rule.Pattern); err != nil {
				return malformed(d.Source, fmt.Sprintf("action %q rule %d", action.Name, i), err)
			}
			if _, err := match.CompileGuard(rule.Expr); err != nil {
				return malformed(d.Source, fmt.Sprintf("action %q rule %d", action.Name, i), err)
			}
		}
	}
	return nil
}

func (d *Document) String() string {
	return d.Pretty().String()
}

func (d *Document) Pretty() api.Text {
	t := clicky.Text(d.Source, "font-bold text-blue-600")
	for _, action := range d.Actions {
		t = t.NewLine().Add(action.Pretty())
	}
	return t
}

func (a Action) Pretty() api.Text {
	t := clicky.Text(a.Name, "text-orange-500").
		Append(fmt.Sprintf(" (%d)", len(a.Rules)), "text-gray-500")
	for i, rule := range a.Rules {
		t = t.NewLine().Append("  "+strconv.Itoa(i)+" ", "text-gray-500").Add(rule.Pretty())
	}
	return t
}

func (r Rule) Pretty() api.Text {
	t := clicky.Text(r.Pattern, "text-cyan-600")
	if r.Expr != "" {
		t = t.Append(" when ", "text-gray-500").Append(r.Expr, "italic")
	}
	return t.Append(" -> ", "text-gray-500").Add(r.Response.Pretty())
}

// ErrMalformed marks any fixture document that failed to load.
var ErrMalformed = errors.New("malformed fixture")

// MalformedError says where and why a fixture document failed to load.
type MalformedError struct {
	Source string
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := e.Reason
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func (e *MalformedError) Unwrap() error { return e.Err }

func malformed(source, reason string, err error) error {
	return &MalformedError{Source: source, Reason: reason, Err: err}
}
