package scoring

import (
	"errors"
	"fmt"
)

// Validation errors returned by Evaluate.
var (
	// ErrUnknownParameter is returned when a selection names a parameter
	// absent from the rule table.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrUnknownReason is returned when a selection contains a reason the
	// parameter's rules do not define.
	ErrUnknownReason = errors.New("unknown reason")
)

// Selection maps a parameter name to the reasons the auditor selected for
// it. Parameters missing from the map, or mapped to an empty slice, default
// to {Compliant}.
type Selection map[string][]string

// ParameterResult is the scored outcome for one parameter.
type ParameterResult struct {
	Parameter string
	// Selected is the effective selection, after defaulting an empty
	// selection to Compliant.
	Selected []string
	Score    float64
	MaxScore float64
	// Fatal reports whether this parameter triggered the audit-level
	// fatal flag, through a fatal rule or a fatal parameter deviation.
	Fatal bool
}

// Compliant reports whether the selection is exactly {Compliant}.
func (r *ParameterResult) Compliant() bool {
	return len(r.Selected) == 1 && r.Selected[0] == Compliant
}

// Result is the outcome of evaluating a full audit.
type Result struct {
	// Parameters are the per-parameter results in rule table order.
	Parameters []ParameterResult
	// TotalScore is the sum of all parameter scores, before the ZTP and
	// fatal overrides.
	TotalScore float64
	// FatalError is set when any fatal rule was selected or any fatal
	// parameter deviated from Compliant.
	FatalError bool
	// ZTPViolation mirrors the auditor's zero-tolerance flag.
	ZTPViolation bool
}

// DisplayScore is the score shown and persisted: zero under ZTP or fatal
// override, the computed total otherwise.
func (r *Result) DisplayScore() float64 {
	if r.ZTPViolation || r.FatalError {
		return 0
	}
	return r.TotalScore
}

// DisplayTag labels the displayed score. ZTP takes precedence over Fatal.
func (r *Result) DisplayTag() string {
	switch {
	case r.ZTPViolation:
		return "ZTP"
	case r.FatalError:
		return "Fatal"
	default:
		return fmt.Sprintf("%g%%", r.TotalScore)
	}
}

// Engine evaluates auditor selections against a rule table. It is pure:
// evaluation does no I/O and the same inputs always produce the same result.
type Engine struct {
	table *RuleTable
}

// NewEngine creates an engine over a validated rule table.
func NewEngine(table *RuleTable) *Engine {
	return &Engine{table: table}
}

// Table returns the engine's rule table.
func (e *Engine) Table() *RuleTable {
	return e.table
}

// Evaluate scores a full audit. Every parameter of the rule table is scored;
// parameters absent from the selection default to Compliant. Selections for
// parameters or reasons not in the table are validation errors.
func (e *Engine) Evaluate(selection Selection, ztpViolation bool) (*Result, error) {
	for name := range selection {
		if _, ok := e.table.Parameter(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
	}

	result := &Result{
		Parameters:   make([]ParameterResult, 0, len(e.table.Parameters)),
		ZTPViolation: ztpViolation,
	}

	for i := range e.table.Parameters {
		param := &e.table.Parameters[i]

		pr, err := e.scoreParameter(param, selection[param.Name])
		if err != nil {
			return nil, err
		}

		result.Parameters = append(result.Parameters, pr)
		result.TotalScore += pr.Score
		if pr.Fatal {
			result.FatalError = true
		}
	}

	return result, nil
}

// scoreParameter scores one parameter. An empty selection defaults to
// Compliant. A selection of exactly {Compliant} earns the full max score;
// anything else deducts each selected non-Compliant reason, floored at zero.
func (e *Engine) scoreParameter(param *Parameter, selected []string) (ParameterResult, error) {
	if len(selected) == 0 {
		selected = []string{Compliant}
	}

	pr := ParameterResult{
		Parameter: param.Name,
		Selected:  selected,
		MaxScore:  param.MaxScore,
	}

	if pr.Compliant() {
		pr.Score = param.MaxScore
		return pr, nil
	}

	score := param.MaxScore
	for _, reason := range selected {
		rule, ok := param.Rule(reason)
		if !ok {
			return ParameterResult{}, fmt.Errorf("%w: %q for parameter %q", ErrUnknownReason, reason, param.Name)
		}
		if rule.Fatal {
			pr.Fatal = true
		}
		score -= rule.Deduction
	}
	if score < 0 {
		score = 0
	}
	pr.Score = score

	// Any deviation on a fatal parameter fails the audit even when no
	// individual rule carries the fatal flag.
	if param.Fatal {
		pr.Fatal = true
	}

	return pr, nil
}
