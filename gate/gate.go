// Package gate evaluates quality gate expressions over run statistics.
package gate

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/titpetric/verdict/model"
)

// Gate is a compiled fail-on expression, such as "failed_tests > 0" or
// `result == "fail" || skipped > 2`. The expression sees the keys of
// model.ReportStats.Env.
type Gate struct {
	source  string
	program *vm.Program
}

// Compile parses a fail-on expression. A blank expression yields a nil
// gate that never fails.
func Compile(source string) (*Gate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(model.ReportStats{}.Env()), expr.AsBool())
	if err != nil {
		return nil, model.WrapError(model.ErrCodeConfig, fmt.Sprintf("failed to compile gate expression %q", source), err)
	}
	return &Gate{
		source:  source,
		program: program,
	}, nil
}

// String returns the expression source.
func (g *Gate) String() string {
	if g == nil {
		return ""
	}
	return g.source
}

// Failed reports whether the run statistics trip the gate.
func (g *Gate) Failed(stats model.ReportStats) (bool, error) {
	if g == nil {
		return false, nil
	}

	result, err := expr.Run(g.program, stats.Env())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate gate expression %q: %w", g.source, err)
	}

	failed, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("gate expression %q returned %T, expected bool", g.source, result)
	}
	return failed, nil
}
