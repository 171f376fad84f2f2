// Package scoring holds the audit scoring rule table and the engine that
// turns an auditor's selections into per-parameter and total scores.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Compliant is the implicit sub-reason present on every parameter. Selecting
// it alone (or selecting nothing) yields the parameter's full score.
const Compliant = "Compliant"

// Rule is one sub-reason of a parameter: selecting it deducts points and may
// mark the whole audit fatal.
type Rule struct {
	Reason    string  `yaml:"reason"`
	Deduction float64 `yaml:"deduction"`
	Fatal     bool    `yaml:"fatal"`
}

// Parameter is one scored section of the audit form.
// A parameter marked Fatal fails the whole audit whenever its selection is
// anything other than exactly {Compliant}, regardless of individual rule
// flags.
type Parameter struct {
	Name     string  `yaml:"name"`
	MaxScore float64 `yaml:"max_score"`
	Fatal    bool    `yaml:"fatal"`
	Rules    []Rule  `yaml:"rules"`
}

// Rule returns the rule for a reason name. The implicit Compliant rule is
// always available.
func (p *Parameter) Rule(reason string) (Rule, bool) {
	if reason == Compliant {
		return Rule{Reason: Compliant}, true
	}
	for _, r := range p.Rules {
		if r.Reason == reason {
			return r, true
		}
	}
	return Rule{}, false
}

// RuleTable is the full data-driven scoring configuration. Parameter order
// matters for display and for the order of results in stored records, not
// for scoring itself.
type RuleTable struct {
	Parameters []Parameter `yaml:"parameters"`
}

// Parameter returns the parameter with the given name.
func (t *RuleTable) Parameter(name string) (*Parameter, bool) {
	for i := range t.Parameters {
		if t.Parameters[i].Name == name {
			return &t.Parameters[i], true
		}
	}
	return nil, false
}

// MaxTotal returns the sum of all parameter max scores.
func (t *RuleTable) MaxTotal() float64 {
	var total float64
	for _, p := range t.Parameters {
		total += p.MaxScore
	}
	return total
}

// LoadRuleTable loads and validates a rule table from a YAML file.
func LoadRuleTable(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}

	return &table, nil
}

// Validate checks the structural invariants of the table: at least one
// parameter, unique parameter names, non-negative scores and deductions, and
// no rule shadowing the implicit Compliant reason.
func (t *RuleTable) Validate() error {
	if len(t.Parameters) == 0 {
		return fmt.Errorf("rule table has no parameters")
	}

	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		if p.MaxScore < 0 {
			return fmt.Errorf("parameter %q has negative max score", p.Name)
		}

		reasons := make(map[string]bool, len(p.Rules))
		for _, r := range p.Rules {
			if r.Reason == "" {
				return fmt.Errorf("parameter %q has a rule with empty reason", p.Name)
			}
			if r.Reason == Compliant {
				return fmt.Errorf("parameter %q redefines the implicit %s rule", p.Name, Compliant)
			}
			if reasons[r.Reason] {
				return fmt.Errorf("parameter %q has duplicate reason %q", p.Name, r.Reason)
			}
			reasons[r.Reason] = true

			if r.Deduction < 0 {
				return fmt.Errorf("parameter %q reason %q has negative deduction", p.Name, r.Reason)
			}
		}
	}

	return nil
}
