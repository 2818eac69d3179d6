package fixtures

import (
	"fmt"
	"strings"
)

// Validate reports suspect-but-loadable constructs in a document. Hard
// errors (bad YAML, bad patterns, bad guards) are already rejected by Load;
// these are the warnings a lint pass surfaces.
func (d *Document) Validate() []error {
	var warnings []error
	if d.Len() == 0 {
		warnings = append(warnings, fmt.Errorf("%s: document has no actions", d.Source))
	}
	for _, action := range d.Actions {
		if len(action.Rules) == 0 {
			warnings = append(warnings, fmt.Errorf("%s: action %q has no rules and exhausts on first call", d.Source, action.Name))
		}
		for i, rule := range action.Rules {
			if strings.HasPrefix(rule.Pattern, ".*") {
				warnings = append(warnings, fmt.Errorf("%s: action %q rule %d: leading .* is redundant, patterns already match prefixes", d.Source, action.Name, i))
			}
		}
	}
	return warnings
}
