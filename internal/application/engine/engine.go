package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
	"github.com/SteveEddy1974/gamble-bot/internal/ports"
	"github.com/SteveEddy1974/gamble-bot/internal/shoe"
	"github.com/SteveEddy1974/gamble-bot/pkg/metrics"
)

// EvaluatorService es la interfaz mínima que los engines necesitan del
// evaluador. Desacopla paper.Engine y live.Engine del tipo concreto.
type EvaluatorService interface {
	EvaluateCycle(shoe domain.ShoeState, quotes []domain.MarketQuote, bankroll domain.BankrollState) ([]domain.Opportunity, error)
}

// CycleResult resume lo producido por un ciclo de polling.
type CycleResult struct {
	Shoe          domain.ShoeState
	Opportunities []domain.Opportunity
	BetsPlaced    int
	Settlements   int
	PnLDelta      float64
}

// Core ejecuta el ciclo completo compartido por paper y live:
// snapshot → tracker → settlements → evaluación → notificación →
// persistencia → colocación de apuestas.
type Core struct {
	provider  ports.SnapshotProvider
	executor  ports.BetExecutor
	evaluator EvaluatorService
	tracker   *shoe.Tracker
	ledger    *Ledger
	store     ports.Storage
	notifier  ports.Notifier
	alerter   ports.Alerter
	metrics   *metrics.Manager
	channelID string
}

// NewCore cablea el ciclo con sus puertos. store, notifier, alerter y
// mets pueden ser nil; los pasos correspondientes se saltan.
func NewCore(
	provider ports.SnapshotProvider,
	executor ports.BetExecutor,
	evaluator EvaluatorService,
	tracker *shoe.Tracker,
	ledger *Ledger,
	store ports.Storage,
	notifier ports.Notifier,
	alerter ports.Alerter,
	mets *metrics.Manager,
	channelID string,
) *Core {
	return &Core{
		provider:  provider,
		executor:  executor,
		evaluator: evaluator,
		tracker:   tracker,
		ledger:    ledger,
		store:     store,
		notifier:  notifier,
		alerter:   alerter,
		metrics:   mets,
		channelID: channelID,
	}
}

// RunCycle ejecuta un ciclo. Con placeBets=false el ciclo evalúa,
// notifica y persiste pero no envía órdenes (modo observación).
func (c *Core) RunCycle(ctx context.Context, placeBets bool) (*CycleResult, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.CycleDuration.Observe(time.Since(start).Seconds())
		}
	}()

	snap, err := c.provider.FetchSnapshot(ctx, c.channelID)
	if err != nil {
		// Sin snapshot este ciclo no hay nada que evaluar; el shoe queda
		// como estaba y el siguiente poll lo reintenta.
		if errors.Is(err, domain.ErrNoData) {
			slog.Debug("no snapshot this cycle", "channel", c.channelID)
			return &CycleResult{Shoe: c.tracker.State()}, nil
		}
		return nil, fmt.Errorf("engine.RunCycle: fetch snapshot: %w", err)
	}

	prevShoeID := c.tracker.State().ShoeID
	state := c.tracker.Observe(snap)
	if state.ShoeID != prevShoeID && prevShoeID != 0 {
		c.onShoeReset(ctx, state)
	}

	result := &CycleResult{Shoe: state}
	result.Settlements, result.PnLDelta = c.processSettlements(ctx, snap.Settlements)

	opps, err := c.evaluator.EvaluateCycle(state, snap.Selections, c.ledger.Bankroll())
	if err != nil {
		return nil, fmt.Errorf("engine.RunCycle: evaluate: %w", err)
	}
	result.Opportunities = opps
	if c.metrics != nil {
		c.metrics.OpportunitiesFound.Add(float64(len(opps)))
	}

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, opps); err != nil {
			slog.Warn("notify failed", "err", err)
		}
	}
	if c.store != nil {
		if err := c.store.SaveOpportunities(ctx, opps); err != nil {
			slog.Warn("save opportunities failed", "err", err)
		}
	}

	if placeBets {
		result.BetsPlaced = c.placeBets(ctx, snap, opps)
	}

	c.updateGauges()
	return result, nil
}

// onShoeReset avisa del cambio de shoe.
func (c *Core) onShoeReset(ctx context.Context, state domain.ShoeState) {
	if c.metrics != nil {
		c.metrics.ShoeResets.Inc()
	}
	if c.alerter != nil {
		msg := fmt.Sprintf("channel %s: new shoe #%d (%d cards)", c.channelID, state.ShoeID, state.CardsRemaining())
		if err := c.alerter.Alert(ctx, "shoe reset", msg); err != nil {
			slog.Warn("alert failed", "err", err)
		}
	}
}

// processSettlements liquida contra el ledger los settlements nuevos del
// feed, con dedup persistente para sobrevivir reinicios.
func (c *Core) processSettlements(ctx context.Context, settlements []domain.Settlement) (int, float64) {
	processed := 0
	pnlDelta := 0.0

	for _, st := range settlements {
		if c.store != nil {
			first, err := c.store.MarkSettlementProcessed(ctx, st.BetID)
			if err != nil {
				slog.Warn("settlement dedup failed", "bet_id", st.BetID, "err", err)
			} else if !first {
				continue
			}
		}

		profit, ok := c.ledger.Settle(st.BetID, st.Status, st.Payout)
		if !ok {
			slog.Debug("settlement for unknown bet", "bet_id", st.BetID)
			continue
		}
		processed++
		pnlDelta += profit

		if c.store != nil {
			status := domain.BetStatus(st.Status)
			if err := c.store.SettleBet(ctx, st.BetID, status, profit, time.Now()); err != nil {
				slog.Warn("persist settlement failed", "bet_id", st.BetID, "err", err)
			}
		}
		if c.metrics != nil {
			c.metrics.SettlementsProcessed.Inc()
			if profit > 0 {
				c.metrics.SettlementsWon.Inc()
			} else {
				c.metrics.SettlementsLost.Inc()
			}
		}

		slog.Info("settlement processed",
			"bet_id", st.BetID, "status", st.Status, "profit", profit)
	}

	return processed, pnlDelta
}

// placeBets envía las oportunidades que el ledger permite.
func (c *Core) placeBets(ctx context.Context, snap domain.Snapshot, opps []domain.Opportunity) int {
	placed := 0
	for _, opp := range opps {
		if !c.ledger.CanPlace(opp.RecommendedStake) {
			slog.Debug("ledger rejected stake",
				"bet", opp.BetName, "stake", opp.RecommendedStake)
			continue
		}

		req := domain.BetRequest{
			MarketID:    snap.MarketID,
			RoundID:     snap.RoundID,
			SelectionID: opp.SelectionID,
			BetName:     opp.BetName,
			Side:        opp.Side,
			Stake:       opp.RecommendedStake,
			Price:       opp.Price,
		}
		if c.metrics != nil {
			c.metrics.BetsPlaced.Inc()
		}

		bet, err := c.executor.PlaceBet(ctx, req)
		if err != nil {
			slog.Warn("bet placement failed", "bet", opp.BetName, "err", err)
			if c.metrics != nil {
				c.metrics.BetsRejected.Inc()
			}
			continue
		}

		bet.ShoeID = opp.ShoeID
		bet.ShoeMode = opp.ShoeMode
		c.ledger.RecordAccepted(bet)
		placed++
		if c.metrics != nil {
			c.metrics.BetsAccepted.Inc()
		}
		if c.store != nil {
			if err := c.store.SaveBet(ctx, bet); err != nil {
				slog.Warn("persist bet failed", "bet_id", bet.BetID, "err", err)
			}
		}

		slog.Info("bet placed",
			"bet_id", bet.BetID, "bet", bet.BetName, "side", bet.Side,
			"stake", bet.Stake, "price", bet.Price, "edge", opp.Edge)
	}
	return placed
}

func (c *Core) updateGauges() {
	if c.metrics == nil {
		return
	}
	bank := c.ledger.Bankroll()
	c.metrics.Balance.Set(bank.Balance)
	c.metrics.Exposure.Set(bank.CurrentExposure)
	c.metrics.PnL.Set(c.ledger.PnL())
}
