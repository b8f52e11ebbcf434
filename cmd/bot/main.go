package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/SteveEddy1974/gamble-bot/config"
	"github.com/SteveEddy1974/gamble-bot/internal/adapters/betfair"
	"github.com/SteveEddy1974/gamble-bot/internal/adapters/notify"
	"github.com/SteveEddy1974/gamble-bot/internal/adapters/storage"
	"github.com/SteveEddy1974/gamble-bot/internal/application/engine"
	"github.com/SteveEddy1974/gamble-bot/internal/application/engine/live"
	"github.com/SteveEddy1974/gamble-bot/internal/application/engine/paper"
	"github.com/SteveEddy1974/gamble-bot/internal/evaluator"
	"github.com/SteveEddy1974/gamble-bot/internal/ports"
	"github.com/SteveEddy1974/gamble-bot/internal/probability"
	"github.com/SteveEddy1974/gamble-bot/internal/shoe"
	"github.com/SteveEddy1974/gamble-bot/pkg/metrics"
)

// cycleRunner es lo que el loop necesita de paper.Engine o live.Engine.
type cycleRunner interface {
	RunOnce(ctx context.Context) (*engine.CycleResult, error)
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	iterations := flag.Int("iterations", 0, "stop after N cycles (0 = run until interrupted)")
	pollInterval := flag.Duration("poll-interval", 0, "override poll interval (e.g. 5s)")
	paperMode := flag.Bool("paper", false, "force simulated venue regardless of config")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full opportunity table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *paperMode {
		cfg.Bot.Simulate = true
	}
	setupLogger(cfg.Log)

	interval := cfg.PollInterval()
	if *pollInterval > 0 {
		interval = *pollInterval
	}

	slog.Info("gamble-bot starting",
		"config", *configPath,
		"channel", cfg.Bot.ChannelID,
		"interval", interval,
		"simulate", cfg.Bot.Simulate,
		"once", *once,
	)

	mets := metrics.NewManager("baccarat_bot")
	if cfg.Metrics.Enabled {
		go func() {
			slog.Info("metrics endpoint up", "addr", cfg.Metrics.Addr)
			if err := mets.Serve(cfg.Metrics.Addr); err != nil {
				slog.Error("metrics server failed", "err", err)
			}
		}()
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	var (
		provider ports.SnapshotProvider
		executor ports.BetExecutor
	)
	if cfg.Bot.Simulate {
		sim := betfair.NewSimulator(betfair.SimulatorConfig{
			Decks:        cfg.Bot.Decks,
			StartBalance: cfg.Bot.StartBalance,
			Seed:         time.Now().UnixNano(),
		})
		provider, executor = sim, sim
	} else {
		client := betfair.NewClient(cfg.API.BaseURL, betfair.Credentials{
			Username: cfg.API.Username,
			Password: cfg.API.Password,
		}, cfg.Bot.Currency)
		provider, executor = client, client
	}

	ledger := engine.NewLedger(cfg.Bot.StartBalance, 0, cfg.Bot.Commission)

	ev := evaluator.New(probability.Default(), evaluator.Config{
		MinEdge:    cfg.Bot.MinEdge,
		Commission: cfg.Bot.Commission,
		Staking:    cfg.DomainStaking(),
	})

	core := engine.NewCore(
		provider, executor, ev,
		shoe.NewTracker(cfg.Bot.Decks),
		ledger,
		store,
		notify.NewConsole(*table),
		notify.NewWebhook(cfg.Bot.AlertWebhookURL, cfg.Bot.AlertsEnabled),
		mets,
		cfg.Bot.ChannelID,
	)

	var runner cycleRunner
	if cfg.Bot.Simulate {
		runner = paper.New(core)
	} else {
		gate := live.NewGate(cfg.Bot.Simulate, cfg.Bot.LiveEnabled,
			cfg.Bot.OperatorTokenEnv, cfg.Bot.OperatorTokenHash)

		// En live el bankroll arranca del balance real del venue.
		if funds, err := executor.AccountFunds(context.Background()); err != nil {
			slog.Warn("could not fetch account funds, using configured balance", "err", err)
		} else {
			ledger.Reconcile(funds)
		}

		runner = live.New(core, gate)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	maxCycles := *iterations
	if *once {
		maxCycles = 1
	}
	if err := runLoop(ctx, runner, interval, maxCycles); err != nil {
		slog.Error("bot exited with error", "err", err)
		os.Exit(1)
	}

	// El ctx de señal ya puede estar cancelado; el resumen usa uno limpio.
	printSummary(context.Background(), store, ledger)
	slog.Info("gamble-bot stopped cleanly")
}

// runLoop ejecuta ciclos cada interval hasta agotar maxCycles (0 = sin
// límite) o hasta que el contexto se cancele. Un ciclo fallido se
// loguea y se reintenta al siguiente tick: los errores transitorios
// del feed no tumban el bot.
func runLoop(ctx context.Context, runner cycleRunner, interval time.Duration, maxCycles int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycles := 0
	for {
		if _, err := runner.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("cycle failed", "err", err)
		}

		cycles++
		if maxCycles > 0 && cycles >= maxCycles {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// printSummary imprime el cierre de sesión: PnL y stats acumuladas.
func printSummary(ctx context.Context, store *storage.SQLiteStorage, ledger *engine.Ledger) {
	bank := ledger.Bankroll()
	slog.Info("session summary",
		"balance", bank.Balance,
		"exposure", bank.CurrentExposure,
		"pnl", ledger.PnL(),
		"active_bets", ledger.ActiveBets(),
		"settled_bets", len(ledger.History()),
	)

	stats, err := store.GetStats(ctx)
	if err != nil {
		slog.Warn("could not read bet stats", "err", err)
		return
	}
	if stats.TotalBets > 0 {
		slog.Info("all-time stats",
			"total_bets", stats.TotalBets,
			"won", stats.Won,
			"lost", stats.Lost,
			"win_rate", stats.WinRate(),
			"total_staked", stats.TotalStaked,
			"net_pnl", stats.NetPnL,
		)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}
