package match

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Guard is a compiled CEL expression evaluated after a rule's pattern has
// matched, with the intercepted call in scope as `command`, `action` and
// `index`.
type Guard struct {
	expr string
	prg  cel.Program
}

// CompileGuard compiles expr into a Guard. An empty expression returns a nil
// Guard, which always passes.
func CompileGuard(expr string) (*Guard, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("command", cel.StringType),
		cel.Variable("action", cel.StringType),
		cel.Variable("index", cel.IntType),
		cel.StdLib(),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Guard{expr: expr, prg: prg}, nil
}

// Eval runs the guard against an intercepted call. The expression must
// produce a boolean.
func (g *Guard) Eval(action, command string, index int) (bool, error) {
	if g == nil {
		return true, nil
	}

	out, _, err := g.prg.Eval(map[string]any{
		"command": command,
		"action":  action,
		"index":   index,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression %q: %w", g.expr, err)
	}

	if result, ok := out.Value().(bool); ok {
		return result, nil
	}
	return false, fmt.Errorf("CEL expression %q did not return a boolean: got %T(%v)", g.expr, out.Value(), out.Value())
}

func (g *Guard) String() string {
	if g == nil {
		return ""
	}
	return g.expr
}
