package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQuests = `package quests

quest: gift: {
	title: "A small gift"
	onAccept: "addplayerint visits 1"
	rewards: [{code: "game:flint", amount: 3}]
}

quest: pelts: {
	objectives: [{type: "hasitem", args: ["game:wolfpelt", 2]}]
	onComplete: "takeitem game:wolfpelt 2"
}
`

// workspace is a config file pointing at a temp quests dir and database.
type workspace struct {
	config    string
	questsDir string
	database  string
}

func newWorkspace(t *testing.T, quests string) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		config:    filepath.Join(dir, "quester.yaml"),
		questsDir: filepath.Join(dir, "quests"),
		database:  filepath.Join(dir, "quester.db"),
	}
	require.NoError(t, os.MkdirAll(ws.questsDir, 0o755))
	if quests != "" {
		require.NoError(t, os.WriteFile(filepath.Join(ws.questsDir, "quests.cue"), []byte(quests), 0o644))
	}
	cfg := fmt.Sprintf("quests_dir: %s\ndatabase: %s\nlog_level: error\n", ws.questsDir, ws.database)
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0o644))
	return ws
}

// run executes the root command with --config set and returns stdout.
func (ws workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", ws.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp.CLIResponse
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "quester", cmd.Use)
	assert.Contains(t, cmd.Long, "QUESTER_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "list", "test", "player", "export", "import", "migrate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestPlayerSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"show", "accept", "complete", "reset", "delete"} {
		sub, _, err := cmd.Find([]string{"player", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	ws := newWorkspace(t, testQuests)
	_, err := ws.run(t, "--format", "xml", "list", "actions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestBadConfig(t *testing.T) {
	ws := newWorkspace(t, testQuests)
	require.NoError(t, os.WriteFile(ws.config, []byte("quest_dir: typo\n"), 0o644))

	out, err := ws.run(t, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeConfig)
}
