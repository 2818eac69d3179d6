package fixtures

import (
	"fmt"

	"github.com/flanksource/gomplate/v3"
)

// renderVars runs the raw document through gomplate with the given values,
// so shared fixtures can be parameterized by namespace, release or path.
// With no vars the document passes through untouched, template syntax and
// all.
func renderVars(data []byte, vars map[string]any) ([]byte, error) {
	if len(vars) == 0 {
		return data, nil
	}
	rendered, err := gomplate.RunTemplate(vars, gomplate.Template{
		Template: string(data),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return []byte(rendered), nil
}
