package ports

import (
	"context"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// BetExecutor coloca apuestas reales (o simuladas) en el venue.
type BetExecutor interface {
	// PlaceBet envía la orden y devuelve la apuesta aceptada con su BetID.
	PlaceBet(ctx context.Context, req domain.BetRequest) (domain.PlacedBet, error)

	// AccountFunds devuelve el balance disponible según el venue.
	AccountFunds(ctx context.Context) (domain.BankrollState, error)
}
