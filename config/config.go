package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Config es la configuración completa del bot.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Staking StakingConfig `yaml:"staking"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// BotConfig controla el comportamiento del loop principal.
type BotConfig struct {
	ChannelID           string  `yaml:"channel_id"`
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"`
	Decks               int     `yaml:"decks"`
	MinEdge             float64 `yaml:"min_edge"`
	Commission          float64 `yaml:"commission"`
	Currency            string  `yaml:"currency"`
	StartBalance        float64 `yaml:"start_balance"`
	Simulate            bool    `yaml:"simulate"`
	LiveEnabled         bool    `yaml:"live_enabled"`
	OperatorTokenEnv    string  `yaml:"operator_token_env"`
	OperatorTokenHash   string  `yaml:"operator_token_hash"`
	AlertsEnabled       bool    `yaml:"alerts_enabled"`
	AlertWebhookURL     string  `yaml:"alert_webhook_url"`
}

// StakingConfig son los límites de riesgo del sizing.
type StakingConfig struct {
	KellyShrink     float64              `yaml:"kelly_shrink"`
	Tiers           []domain.BalanceTier `yaml:"tiers"`
	MaxExposurePct  float64              `yaml:"max_exposure_pct"`
	MinBetIncrement float64              `yaml:"min_bet_increment"`
	MaxBetAbsolute  float64              `yaml:"max_bet_absolute"`
	Sizing          string               `yaml:"sizing"`
}

// APIConfig contiene el base URL y las credenciales del Games API.
// Las credenciales normalmente vienen de variables de entorno.
type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// MetricsConfig controla el endpoint Prometheus.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`   // vacío = solo stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben al YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bot.PollIntervalSeconds) * time.Second
}

// DomainStaking convierte la sección de staking al tipo del dominio.
func (c *Config) DomainStaking() domain.StakingConfig {
	return domain.StakingConfig{
		KellyShrink:     c.Staking.KellyShrink,
		Tiers:           domain.TierTable(c.Staking.Tiers),
		MaxExposurePct:  c.Staking.MaxExposurePct,
		MinBetIncrement: c.Staking.MinBetIncrement,
		MaxBetAbsolute:  c.Staking.MaxBetAbsolute,
		Sizing:          c.Staking.Sizing,
	}
}

// Validate comprueba los rangos que no tienen default razonable.
func (c *Config) Validate() error {
	if c.Bot.ChannelID == "" {
		return fmt.Errorf("%w: bot.channel_id is required", domain.ErrConfiguration)
	}
	if c.Bot.MinEdge < 0 {
		return fmt.Errorf("%w: bot.min_edge %v negative", domain.ErrConfiguration, c.Bot.MinEdge)
	}
	if c.Bot.Commission < 0 || c.Bot.Commission >= 1 {
		return fmt.Errorf("%w: bot.commission %v outside [0,1)", domain.ErrConfiguration, c.Bot.Commission)
	}
	if c.Bot.StartBalance <= 0 {
		return fmt.Errorf("%w: bot.start_balance %v must be positive", domain.ErrConfiguration, c.Bot.StartBalance)
	}
	if !c.Bot.Simulate && (c.API.Username == "" || c.API.Password == "") {
		return fmt.Errorf("%w: api credentials required unless bot.simulate is on", domain.ErrConfiguration)
	}
	return c.DomainStaking().Validate()
}

// applyEnvOverrides sobreescribe valores con variables de entorno.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BETFAIR_USERNAME"); v != "" {
		cfg.API.Username = v
	}
	if v := os.Getenv("BETFAIR_PASSWORD"); v != "" {
		cfg.API.Password = v
	}
	if v := os.Getenv("BOT_CHANNEL_ID"); v != "" {
		cfg.Bot.ChannelID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura valores sensatos para lo no configurado.
func setDefaults(cfg *Config) {
	if cfg.Bot.PollIntervalSeconds <= 0 {
		cfg.Bot.PollIntervalSeconds = 10
	}
	if cfg.Bot.Decks <= 0 {
		cfg.Bot.Decks = domain.DefaultDecks
	}
	if cfg.Bot.MinEdge == 0 {
		cfg.Bot.MinEdge = 0.02
	}
	if cfg.Bot.Currency == "" {
		cfg.Bot.Currency = "GBP"
	}
	if cfg.Bot.StartBalance == 0 {
		cfg.Bot.StartBalance = 1000
	}
	if cfg.Staking.KellyShrink == 0 {
		cfg.Staking.KellyShrink = 0.25
	}
	if len(cfg.Staking.Tiers) == 0 {
		cfg.Staking.Tiers = []domain.BalanceTier{{Threshold: 0, Cap: 0.05}}
	}
	if cfg.Staking.MaxExposurePct == 0 {
		cfg.Staking.MaxExposurePct = 0.20
	}
	if cfg.Staking.MinBetIncrement == 0 {
		cfg.Staking.MinBetIncrement = 0.01
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "gamblebot.db"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9100"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
}
