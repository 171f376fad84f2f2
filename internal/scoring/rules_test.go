package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRuleTable(t *testing.T) {
	path := writeRules(t, `
parameters:
  - name: Opening and Closing
    max_score: 9
    rules:
      - reason: Script & Guidelines adherence
        deduction: 3
  - name: Right action taken
    max_score: 0
    fatal: true
    rules:
      - reason: Promised action not taken
        deduction: 0
`)

	table, err := LoadRuleTable(path)
	require.NoError(t, err)

	require.Len(t, table.Parameters, 2)
	assert.Equal(t, 9.0, table.Parameters[0].MaxScore)
	assert.False(t, table.Parameters[0].Fatal)
	assert.True(t, table.Parameters[1].Fatal)
	assert.Equal(t, 9.0, table.MaxTotal())

	rule, ok := table.Parameters[0].Rule("Script & Guidelines adherence")
	require.True(t, ok)
	assert.Equal(t, 3.0, rule.Deduction)

	// The implicit Compliant rule is always resolvable.
	compliant, ok := table.Parameters[1].Rule(Compliant)
	require.True(t, ok)
	assert.Zero(t, compliant.Deduction)
	assert.False(t, compliant.Fatal)
}

func TestLoadRuleTable_FileMissing(t *testing.T) {
	_, err := LoadRuleTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRuleTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty table", "parameters: []"},
		{"duplicate parameter", `
parameters:
  - name: A
    max_score: 5
  - name: A
    max_score: 5
`},
		{"negative max score", `
parameters:
  - name: A
    max_score: -1
`},
		{"negative deduction", `
parameters:
  - name: A
    max_score: 5
    rules:
      - reason: B
        deduction: -2
`},
		{"redefines compliant", `
parameters:
  - name: A
    max_score: 5
    rules:
      - reason: Compliant
        deduction: 1
`},
		{"duplicate reason", `
parameters:
  - name: A
    max_score: 5
    rules:
      - reason: B
        deduction: 1
      - reason: B
        deduction: 2
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRuleTable(writeRules(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestShippedRuleTable(t *testing.T) {
	table, err := LoadRuleTable("../../rules/scoring.yaml")
	require.NoError(t, err)

	assert.Equal(t, 100.0, table.MaxTotal())

	resolution, ok := table.Parameter("Correct and Complete Resolution")
	require.True(t, ok)
	assert.True(t, resolution.Fatal)

	rightAction, ok := table.Parameter("Right action taken")
	require.True(t, ok)
	assert.True(t, rightAction.Fatal)
	assert.Zero(t, rightAction.MaxScore)
}
