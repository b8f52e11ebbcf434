// Package paper corre el bot contra el venue simulado: mismas reglas de
// evaluación y staking, dinero de mentira.
package paper

import (
	"context"
	"log/slog"

	"github.com/SteveEddy1974/gamble-bot/internal/application/engine"
)

// Engine ejecuta ciclos de paper trading.
type Engine struct {
	core *engine.Core
}

// New crea un engine de paper trading sobre el core dado.
func New(core *engine.Core) *Engine {
	return &Engine{core: core}
}

// RunOnce ejecuta un ciclo. En paper las apuestas siempre se colocan:
// el ejecutor es el simulador.
func (e *Engine) RunOnce(ctx context.Context) (*engine.CycleResult, error) {
	result, err := e.core.RunCycle(ctx, true)
	if err != nil {
		return nil, err
	}

	slog.Info("paper cycle done",
		"opportunities", len(result.Opportunities),
		"bets_placed", result.BetsPlaced,
		"settlements", result.Settlements,
		"pnl_delta", result.PnLDelta,
		"cards_remaining", result.Shoe.CardsRemaining(),
		"shoe_mode", result.Shoe.Mode)
	return result, nil
}
