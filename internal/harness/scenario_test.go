package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content beside a placeholder model file and returns
// the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte("id: x\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: valid
description: "A valid scenario"
model: model.yaml
violation:
  rule: slo-a
  value: 12.5
  period: 60
max_impacts: 20
assertions:
  - type: notification
    task: Task_a
    path: [task:Task_a, saga_step:step-a, interface:face-a]
  - type: impacts_at
    location: interface:face-a
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "valid", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "model.yaml"), scenario.Model)
	assert.Equal(t, ViolationInput{Rule: "slo-a", Value: 12.5, Period: 60}, scenario.Violation)
	assert.Equal(t, 20, scenario.MaxImpacts)
	require.Len(t, scenario.Assertions, 2)
	assert.Equal(t, []string{"task:Task_a", "saga_step:step-a", "interface:face-a"}, scenario.Assertions[0].Path)
}

func TestLoadScenario_Rejects(t *testing.T) {
	base := "name: s\ndescription: d\nmodel: model.yaml\nviolation: {rule: slo-a}\n"
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", base + "flow_token: abc\nassertions: [{type: impact_count}]\n", "failed to parse YAML"},
		{"missing name", "description: d\nmodel: model.yaml\nviolation: {rule: r}\nassertions: [{type: impact_count}]\n", "name is required"},
		{"missing model file", "name: s\ndescription: d\nmodel: gone.yaml\nviolation: {rule: r}\nassertions: [{type: impact_count}]\n", "model file not found"},
		{"missing rule", "name: s\ndescription: d\nmodel: model.yaml\nassertions: [{type: impact_count}]\n", "violation.rule is required"},
		{"negative budget", base + "max_impacts: -1\nassertions: [{type: impact_count}]\n", "max_impacts must not be negative"},
		{"no assertions", base, "assertions list is required"},
		{"empty type", base + "assertions: [{count: 1}]\n", "assertions[0]: type is required"},
		{"unknown type", base + "assertions: [{type: trace_order}]\n", `unknown type "trace_order"`},
		{"bad location", base + "assertions: [{type: impacts_at, location: face-a}]\n", "assertions[0]"},
		{"bad path", base + "assertions: [{type: notification, task: T, path: [queue:x]}]\n", "assertions[0]"},
		{"notification without task", base + "assertions: [{type: notification}]\n", "task is required"},
		{"error without code", base + "assertions: [{type: error}]\n", "code is required"},
		{"negative count", base + "assertions: [{type: impact_count, count: -2}]\n", "count must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
