package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/goccy/go-yaml"
)

// Load reads a fixture document from disk. Markdown files are scanned for
// yaml code blocks; everything else is parsed as a plain YAML document.
func Load(source string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", source, err)
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".md", ".markdown":
		return loadMarkdown(data, source, opts...)
	}
	return Parse(data, source, opts...)
}

// Parse decodes a YAML fixture document. The top level must be a mapping of
// action names to rule sequences; anything else is malformed.
func Parse(data []byte, source string, opts ...Option) (*Document, error) {
	var options DocumentOptions
	for _, opt := range opts {
		opt(&options)
	}
	doc, err := decode(data, source, options)
	if err != nil {
		return nil, err
	}
	if err := doc.compile(); err != nil {
		return nil, err
	}
	logger.V(4).Infof("parsed %d actions from %s", doc.Len(), source)
	return doc, nil
}

// ruleDoc is the raw YAML shape of a single rule. Cmd is a pointer so a
// missing key can be told apart from an empty one.
type ruleDoc struct {
	Cmd  *string `yaml:"cmd"`
	Rsp  any     `yaml:"rsp"`
	Expr string  `yaml:"expr"`
}

func decode(data []byte, source string, options DocumentOptions) (*Document, error) {
	rendered, err := renderVars(data, options.Vars)
	if err != nil {
		return nil, malformed(source, "template rendering failed", err)
	}

	doc := &Document{Source: source, Options: options}
	if len(bytes.TrimSpace(rendered)) == 0 {
		return doc, nil
	}

	// Two decode passes: a MapSlice to keep action order and catch duplicate
	// keys, then a strict typed decode to reject unknown rule fields.
	var ordered yaml.MapSlice
	if err := yaml.Unmarshal(rendered, &ordered); err != nil {
		return nil, malformed(source, "document is not a mapping of actions", err)
	}

	seen := make(map[string]bool, len(ordered))
	for _, item := range ordered {
		name, ok := item.Key.(string)
		if !ok {
			return nil, malformed(source, fmt.Sprintf("action name %v is not a string", item.Key), nil)
		}
		if seen[name] {
			return nil, malformed(source, fmt.Sprintf("duplicate action %q", name), nil)
		}
		seen[name] = true
	}

	var typed map[string][]ruleDoc
	if err := yaml.UnmarshalWithOptions(rendered, &typed, yaml.Strict()); err != nil {
		return nil, malformed(source, "document is not a mapping of rule sequences", err)
	}

	for _, item := range ordered {
		name := item.Key.(string)
		action := Action{Name: name, Rules: make([]Rule, 0, len(typed[name]))}
		for i, raw := range typed[name] {
			rule, err := buildRule(raw, source, name, i)
			if err != nil {
				return nil, err
			}
			action.Rules = append(action.Rules, rule)
		}
		doc.Actions = append(doc.Actions, action)
	}

	return doc, nil
}

func buildRule(raw ruleDoc, source, action string, index int) (Rule, error) {
	if raw.Cmd == nil {
		return Rule{}, malformed(source, fmt.Sprintf("action %q rule %d is missing cmd", action, index), nil)
	}
	if *raw.Cmd == "" {
		return Rule{}, malformed(source, fmt.Sprintf("action %q rule %d has an empty cmd", action, index), nil)
	}
	rsp, err := NewResponse(raw.Rsp)
	if err != nil {
		return Rule{}, malformed(source, fmt.Sprintf("action %q rule %d", action, index), err)
	}
	return Rule{Pattern: *raw.Cmd, Response: rsp, Expr: raw.Expr}, nil
}

// merge appends the actions of other into d, rejecting actions already
// present. Used when a markdown file carries several yaml blocks.
func (d *Document) merge(other *Document, source string) error {
	for _, action := range other.Actions {
		if _, exists := d.Lookup(action.Name); exists {
			return malformed(source, fmt.Sprintf("duplicate action %q", action.Name), nil)
		}
		d.Actions = append(d.Actions, action)
	}
	return nil
}
