package playback

import (
	"context"
	"fmt"
	"regexp"

	"github.com/flanksource/commons/logger"
	"github.com/goccy/go-yaml"

	"github.com/flanksource/understudy/fixtures"
	"github.com/flanksource/understudy/shell"
)

// Recorder passes commands through to a real shell.Commander and writes
// what happened into a fixture document, so a live run can be replayed
// offline later.
type Recorder struct {
	next    shell.Commander
	action  string
	actions []fixtures.Action
}

var _ shell.Commander = (*Recorder)(nil)

// NewRecorder wraps next, recording every Run.
func NewRecorder(next shell.Commander) *Recorder {
	return &Recorder{next: next}
}

// For switches recording to the named action, creating it on first use.
func (r *Recorder) For(action string) *Recorder {
	r.action = action
	return r
}

// Seed preloads the recording with doc's actions, so new rules append to an
// existing fixture instead of starting one over.
func (r *Recorder) Seed(doc *fixtures.Document) *Recorder {
	for _, action := range doc.Actions {
		rules := append([]fixtures.Rule(nil), action.Rules...)
		if existing := r.lookup(action.Name); existing != nil {
			existing.Rules = append(existing.Rules, rules...)
			continue
		}
		r.actions = append(r.actions, fixtures.Action{Name: action.Name, Rules: rules})
	}
	return r
}

func (r *Recorder) lookup(name string) *fixtures.Action {
	for i := range r.actions {
		if r.actions[i].Name == name {
			return &r.actions[i]
		}
	}
	return nil
}

func (r *Recorder) Run(ctx context.Context, command string, opts shell.Options) (*shell.Result, error) {
	if r.action == "" {
		return nil, fmt.Errorf("no action selected, call For before recording commands")
	}

	result, err := r.next.Run(ctx, command, opts)
	r.append(fixtures.Rule{
		// Recorded commands are literals; quote them so regex
		// metacharacters in flags or names keep their spelling.
		Pattern:  regexp.QuoteMeta(command),
		Response: recordedResponse(result, err),
	})
	logger.V(4).Infof("recorded %s: %s", r.action, command)
	return result, err
}

func recordedResponse(result *shell.Result, err error) fixtures.Response {
	if err != nil || result == nil || result.Failed() {
		return fixtures.FlagResponse(false)
	}
	if result.Output() == "" {
		return fixtures.FlagResponse(true)
	}
	return fixtures.TextResponse(result.Output())
}

func (r *Recorder) append(rule fixtures.Rule) {
	if existing := r.lookup(r.action); existing != nil {
		existing.Rules = append(existing.Rules, rule)
		return
	}
	r.actions = append(r.actions, fixtures.Action{Name: r.action, Rules: []fixtures.Rule{rule}})
}

// Document snapshots the recording as a playable document.
func (r *Recorder) Document() *fixtures.Document {
	doc := &fixtures.Document{Source: "recorded", Actions: make([]fixtures.Action, 0, len(r.actions))}
	for _, action := range r.actions {
		doc.Actions = append(doc.Actions, fixtures.Action{
			Name:  action.Name,
			Rules: append([]fixtures.Rule(nil), action.Rules...),
		})
	}
	return doc
}

// Export renders the recording as fixture YAML, action order preserved.
func (r *Recorder) Export() ([]byte, error) {
	slice := yaml.MapSlice{}
	for _, action := range r.actions {
		slice = append(slice, yaml.MapItem{Key: action.Name, Value: action.Rules})
	}
	data, err := yaml.Marshal(slice)
	if err != nil {
		return nil, fmt.Errorf("failed to export recording: %w", err)
	}
	return data, nil
}
