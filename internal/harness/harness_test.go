package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Wolfhunt(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/wolfhunt.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRun_WalkAutoCompletes(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: trek
source: |
  quest: trek: {
    objectives: [{type: "walkdistance", args: ["trek", 10]}]
    autoComplete: true
    rewards: [{code: "game:flint", amount: 1}]
  }
steps:
  - accept: trek
  - move: [6, 0]
  - tick: 1
  - move: [6, 0]
  - tick: 1
assertions:
  - type: active
  - type: completed
    quests: [trek]
  - type: inventory
    code: "game:flint"
    amount: 1
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_StormSurvived(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: stormwatch
source: |
  quest: stormwatch: {
    objectives: [{type: "temporalstorm", args: ["stormwatch", 1], onComplete: "setplayerbool weathered true"}]
  }
steps:
  - accept: stormwatch
  - storm: true
  - tick: 1
  - complete: stormwatch
    error: "objectives not met"
  - storm: false
  - tick: 1
  - complete: stormwatch
assertions:
  - type: completed
    quests: [stormwatch]
  - type: attr
    key: weathered
    value: "true"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.Trace, "  action [stormwatch] setplayerbool weathered true: ok")
}

func TestRun_ReportsFailures(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
source: |
  quest: intro: {}
player:
  inventory:
    - { code: "game:bread", amount: 2 }
steps:
  - complete: intro
  - accept: nosuchquest
assertions:
  - type: completed
    quests: [intro]
  - type: inventory
    code: "game:bread"
    amount: 3
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "step 1 (complete): unexpected error")
	assert.Contains(t, result.Errors[1], "unknown quest")
	assert.Contains(t, result.Errors[2], "intro not completed")
	assert.Contains(t, result.Errors[3], "expected 3 of game:bread, got 2")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: noerror
source: |
  quest: intro: {}
steps:
  - accept: intro
    error: "anything"
assertions: []
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{`step 1 (accept): expected error containing "anything"`}, result.Errors)
}

func TestRun_CompileErrorIsFatal(t *testing.T) {
	s := &Scenario{
		Name:   "broken",
		Source: "quest: x: {objectives: 3}",
		Steps:  []Step{{Tick: 1}},
	}
	_, err := Run(s)
	require.Error(t, err)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: x\nsource: 'quest: a: {}'\nsteps: [{tick: 1}]\nasertions: []\n", "failed to parse YAML"},
		{"missing name", "source: 'quest: a: {}'\nsteps: [{tick: 1}]\n", "name is required"},
		{"no quests", "name: x\nsteps: [{tick: 1}]\n", "quests or source is required"},
		{"no steps", "name: x\nsource: 'quest: a: {}'\n", "steps list is required"},
		{"two actions", "name: x\nsource: 'quest: a: {}'\nsteps: [{tick: 1, accept: a}]\n", "exactly one action"},
		{"bad move", "name: x\nsource: 'quest: a: {}'\nsteps: [{move: [1]}]\n", "move takes"},
		{"giver without accept", "name: x\nsource: 'quest: a: {}'\nsteps: [{tick: 1, giver: trader}]\n", "giver only applies"},
		{"bad assertion", "name: x\nsource: 'quest: a: {}'\nsteps: [{tick: 1}]\nassertions: [{type: weather}]\n", "unknown assertion type"},
		{"attr without key", "name: x\nsource: 'quest: a: {}'\nsteps: [{tick: 1}]\nassertions: [{type: attr}]\n", "key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingQuestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nquests: [missing.cue]\nsteps: [{tick: 1}]\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quest file not found")
}

func TestStep_Kind(t *testing.T) {
	yes := true
	hour := 22.0
	assert.Equal(t, "storm", Step{Storm: &yes}.Kind())
	assert.Equal(t, "hour", Step{Hour: &hour}.Kind())
	assert.Equal(t, "give", Step{Give: &Item{Code: "a", Amount: 1}}.Kind())
	assert.Empty(t, Step{}.Kind())
	assert.Empty(t, Step{Kill: "wolf", Interact: "trader"}.Kind())
}
