// Package live corre el bot contra el Games API real. Las órdenes solo
// salen si el Gate del operador lo permite; si no, el engine funciona
// en modo observación: evalúa, notifica y persiste sin apostar.
package live

import (
	"context"
	"log/slog"

	"github.com/SteveEddy1974/gamble-bot/internal/application/engine"
)

// Engine ejecuta ciclos contra el venue real.
type Engine struct {
	core       *engine.Core
	gate       *Gate
	warnedOnce bool
}

// New crea un engine live sobre el core dado.
func New(core *engine.Core, gate *Gate) *Engine {
	return &Engine{core: core, gate: gate}
}

// RunOnce ejecuta un ciclo. La decisión del gate se consulta en cada
// ciclo: retirar el token del entorno frena las órdenes sin reiniciar.
func (e *Engine) RunOnce(ctx context.Context) (*engine.CycleResult, error) {
	allowed := e.gate.LiveAllowed()
	if !allowed && !e.warnedOnce {
		slog.Warn("live placement disabled, running in observation mode")
		e.warnedOnce = true
	}

	result, err := e.core.RunCycle(ctx, allowed)
	if err != nil {
		return nil, err
	}

	slog.Info("live cycle done",
		"opportunities", len(result.Opportunities),
		"bets_placed", result.BetsPlaced,
		"settlements", result.Settlements,
		"pnl_delta", result.PnLDelta,
		"placement_allowed", allowed)
	return result, nil
}
