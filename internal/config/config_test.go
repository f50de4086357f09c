package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithEnv("", nil)

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
quests_dir: content/quests
database: /var/lib/quester/quests.db
log_level: debug
tick_interval: 500ms
sweep_every_ticks: 4
reward_seed: 42
notify_errors: false
legacy_namespaces: [vsquest, alegacy]
`)

	cfg, err := LoadWithEnv(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "content/quests", cfg.QuestsDir)
	assert.Equal(t, "/var/lib/quester/quests.db", cfg.Database)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 4, cfg.SweepEveryTicks)
	assert.Equal(t, 60, cfg.OrphanLogEveryTicks, "unset keys keep defaults")
	assert.Equal(t, uint64(42), cfg.RewardSeed)
	assert.False(t, cfg.NotifyErrors)
	assert.Equal(t, []string{"vsquest", "alegacy"}, cfg.LegacyNamespaces)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database: from-file.db\nmax_action_depth: 8\n")

	cfg, err := LoadWithEnv(path, map[string]string{
		"QUESTER_DATABASE":          "from-env.db",
		"QUESTER_TICK_INTERVAL":     "2s",
		"QUESTER_LEGACY_NAMESPACES": "old,older",
		"DATABASE":                  "unprefixed-is-ignored.db",
	})

	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database)
	assert.Equal(t, 8, cfg.MaxActionDepth)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, []string{"old", "older"}, cfg.LegacyNamespaces)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{"unknown key", "tick_rate: 1s\n", nil, "tick_rate"},
		{"bad duration", "tick_interval: soon\n", nil, "parse config"},
		{"non-positive interval", "tick_interval: 0s\n", nil, "tick_interval must be positive"},
		{"bad sweep", "sweep_every_ticks: 0\n", nil, "sweep_every_ticks"},
		{"bad level", "log_level: loud\n", nil, "log_level"},
		{"bad env int", "", map[string]string{"QUESTER_MAX_ACTION_DEPTH": "deep"}, "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnv(writeConfig(t, tt.file), tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
