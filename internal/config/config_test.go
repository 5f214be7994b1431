package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ENGINE_HOST", "ENGINE_PORT", "GAME_NAME", "PLAYER", "LOG_LEVEL", "LOG_FILE", "JOURNAL_DSN", "BRIDGE_ADDR"} {
		t.Setenv(k, "")
	}
	// keep a developer's .env out of the test
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("client", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.EngineHost)
	assert.Equal(t, 8000, cfg.EnginePort)
	assert.Equal(t, game.Player1, cfg.Player)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "client.log", cfg.LogFile)
	assert.Equal(t, ":8080", cfg.BridgeAddr)
	assert.Empty(t, cfg.JournalDSN)
}

func TestLoadEnvThenFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENGINE_HOST", "engine.local")
	t.Setenv("ENGINE_PORT", "9000")
	t.Setenv("PLAYER", "Player2")
	t.Setenv("GAME_NAME", "from-env")

	cfg, err := Load("client", []string{"-game", "from-flag", "-port", "9100"})
	require.NoError(t, err)
	assert.Equal(t, "engine.local", cfg.EngineHost)
	assert.Equal(t, 9100, cfg.EnginePort)
	assert.Equal(t, "from-flag", cfg.GameName)
	assert.Equal(t, game.Player2, cfg.Player)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "bad player", args: []string{"-player", "Player3"}},
		{name: "bad port env", env: map[string]string{"ENGINE_PORT": "eighty"}},
		{name: "port out of range", args: []string{"-port", "70000"}},
		{name: "unknown flag", args: []string{"-colour", "red"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("client", tc.args)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}
