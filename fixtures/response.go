package fixtures

import (
	"encoding/json"
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	ghodss "github.com/ghodss/yaml"
	"github.com/goccy/go-yaml"
)

// ResponseKind discriminates the three response shapes a rule may carry.
type ResponseKind int

const (
	// Text is a plain string returned as the command's stdout.
	Text ResponseKind = iota
	// Flag is a bare boolean: true simulates success with empty output,
	// false simulates a failed command.
	Flag
	// Structured is any mapping or sequence, returned as a parsed value.
	Structured
)

func (k ResponseKind) String() string {
	switch k {
	case Text:
		return "text"
	case Flag:
		return "flag"
	case Structured:
		return "structured"
	default:
		return fmt.Sprintf("ResponseKind(%d)", int(k))
	}
}

// Response is the canned result attached to a rule. Exactly one of the
// variant fields is meaningful, selected by Kind.
type Response struct {
	Kind ResponseKind `json:"kind"`
	Text string       `json:"text,omitempty"`
	Flag bool         `json:"flag,omitempty"`
	// Value holds structured responses normalized to the JSON object model:
	// string keys, float64 numbers.
	Value any `json:"value,omitempty"`
}

// NewResponse builds a response from a raw YAML value. A missing response
// (nil) is success with empty output, matching a bare `cmd:` entry.
func NewResponse(raw any) (Response, error) {
	switch v := raw.(type) {
	case nil:
		return FlagResponse(true), nil
	case bool:
		return FlagResponse(v), nil
	case string:
		return TextResponse(v), nil
	default:
		value, err := normalizeValue(raw)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: Structured, Value: value}, nil
	}
}

// TextResponse returns a plain-stdout response.
func TextResponse(text string) Response {
	return Response{Kind: Text, Text: text}
}

// FlagResponse returns a bare success or failure response.
func FlagResponse(ok bool) Response {
	return Response{Kind: Flag, Flag: ok}
}

// StructuredResponse normalizes value into the JSON object model.
func StructuredResponse(value any) (Response, error) {
	normalized, err := normalizeValue(value)
	if err != nil {
		return Response{}, err
	}
	return Response{Kind: Structured, Value: normalized}, nil
}

// normalizeValue round-trips an arbitrary YAML value through JSON so every
// structured response shares one object model regardless of how the source
// document spelled it.
func normalizeValue(raw any) (any, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize response: %w", err)
	}
	jsonData, err := ghodss.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize response: %w", err)
	}
	var value any
	if err := json.Unmarshal(jsonData, &value); err != nil {
		return nil, fmt.Errorf("failed to normalize response: %w", err)
	}
	return value, nil
}

// Succeeded reports whether the response simulates a successful command.
// Only an explicit false flag simulates failure.
func (r Response) Succeeded() bool {
	return r.Kind != Flag || r.Flag
}

// Stdout renders what the simulated command prints: the text itself, a
// JSON document for structured values, nothing for flags.
func (r Response) Stdout() string {
	switch r.Kind {
	case Text:
		return r.Text
	case Structured:
		out, err := r.JSON()
		if err != nil {
			return fmt.Sprintf("%v", r.Value)
		}
		return out
	default:
		return ""
	}
}

// JSON renders a structured response as compact JSON.
func (r Response) JSON() (string, error) {
	data, err := json.Marshal(r.Value)
	if err != nil {
		return "", fmt.Errorf("failed to render response: %w", err)
	}
	return string(data), nil
}

func (r Response) String() string {
	switch r.Kind {
	case Text:
		return r.Text
	case Flag:
		if r.Flag {
			return "true"
		}
		return "false"
	default:
		return r.Stdout()
	}
}

// MarshalYAML writes the response back in its source shape, so recorded
// documents look hand-written.
func (r Response) MarshalYAML() (any, error) {
	switch r.Kind {
	case Text:
		return r.Text, nil
	case Flag:
		return r.Flag, nil
	default:
		return r.Value, nil
	}
}

func (r Response) Pretty() api.Text {
	switch r.Kind {
	case Flag:
		if r.Flag {
			return clicky.Text("ok", "text-green-600")
		}
		return clicky.Text("fail", "text-red-600 font-bold")
	case Structured:
		return clicky.Text(truncate(r.Stdout(), 60), "text-purple-600")
	default:
		return clicky.Text(truncate(r.Text, 60), "text-green-700")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
