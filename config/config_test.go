package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validYAML = `
bot:
  channel_id: "1444077"
  poll_interval_seconds: 5
  min_edge: 0.03
  commission: 0.05
  start_balance: 500
  simulate: true
staking:
  kelly_shrink: 0.5
  max_exposure_pct: 0.25
  min_bet_increment: 0.5
  tiers:
    - threshold: 0
      cap: 0.05
    - threshold: 1000
      cap: 0.10
storage:
  dsn: ":memory:"
log:
  level: debug
`

func TestLoad_ParsesAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "1444077", cfg.Bot.ChannelID)
	assert.Equal(t, 5, cfg.Bot.PollIntervalSeconds)
	assert.Equal(t, 0.03, cfg.Bot.MinEdge)
	assert.Equal(t, 500.0, cfg.Bot.StartBalance)
	assert.True(t, cfg.Bot.Simulate)

	// Defaults para lo no configurado.
	assert.Equal(t, domain.DefaultDecks, cfg.Bot.Decks)
	assert.Equal(t, "GBP", cfg.Bot.Currency)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, "text", cfg.Log.Format)

	staking := cfg.DomainStaking()
	require.NoError(t, staking.Validate())
	assert.Equal(t, 0.5, staking.KellyShrink)
	assert.Len(t, staking.Tiers, 2)
	assert.Equal(t, 0.10, staking.Tiers.CapFor(1500))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "bot: [not a map"))
	assert.Error(t, err)
}

func TestLoad_RequiresChannelID(t *testing.T) {
	_, err := Load(writeConfig(t, `
bot:
  simulate: true
  start_balance: 100
`))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_LiveRequiresCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
bot:
  channel_id: "1444077"
  start_balance: 100
  simulate: false
`))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BETFAIR_USERNAME", "steve")
	t.Setenv("BETFAIR_PASSWORD", "hunter2")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, `
bot:
  channel_id: "1444077"
  start_balance: 100
  simulate: false
`))
	require.NoError(t, err)
	assert.Equal(t, "steve", cfg.API.Username)
	assert.Equal(t, "hunter2", cfg.API.Password)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidStaking(t *testing.T) {
	_, err := Load(writeConfig(t, `
bot:
  channel_id: "1444077"
  start_balance: 100
  simulate: true
staking:
  kelly_shrink: 1.5
`))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPollInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "5s", cfg.PollInterval().String())
}
