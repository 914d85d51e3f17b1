package rules

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Context gates let operators attach a CEL expression to a rule in
// place of the builtin indicator check, e.g.
//
//	context.contains("광고") || context.contains("이벤트")
//
// The expression sees the matched keyword, the local context window,
// and the rule category, and must return bool.

// newGateEnv creates the CEL environment for context-gate expressions.
func newGateEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("keyword", cel.StringType),
		cel.Variable("context", cel.StringType),
		cel.Variable("category", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// compileGate compiles a rule's gate expression. Returns an error for
// invalid expressions or non-bool outputs.
func compileGate(env *cel.Env, category, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile gate for %s: %w", category, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("gate for %s: expression must return bool, got %s", category, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create gate program for %s: %w", category, err)
	}
	return program, nil
}

// evalGate runs a compiled gate for one match. Evaluation errors fail
// closed: the match is treated as not a genuine violation.
func evalGate(program cel.Program, category, keyword, context string) bool {
	out, _, err := program.Eval(map[string]any{
		"keyword":  keyword,
		"context":  context,
		"category": category,
	})
	if err != nil {
		slog.Warn("gate evaluation failed",
			"category", category,
			"keyword", keyword,
			"error", err,
		)
		return false
	}

	accepted, ok := out.(types.Bool)
	if !ok {
		return false
	}
	return bool(accepted)
}
