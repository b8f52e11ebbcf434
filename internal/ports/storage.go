package ports

import (
	"context"
	"time"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Storage persiste los resultados de cada ciclo de evaluación y el
// historial de apuestas.
type Storage interface {
	// SaveOpportunities persiste las oportunidades encontradas en un ciclo.
	SaveOpportunities(ctx context.Context, opportunities []domain.Opportunity) error

	// GetHistory devuelve las oportunidades registradas en el rango dado.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.Opportunity, error)

	// SaveBet registra una apuesta aceptada.
	SaveBet(ctx context.Context, bet domain.PlacedBet) error

	// SettleBet actualiza estado y payout de una apuesta ya registrada.
	SettleBet(ctx context.Context, betID string, status domain.BetStatus, payout float64, settledAt time.Time) error

	// GetOpenBets devuelve las apuestas todavía PENDING.
	GetOpenBets(ctx context.Context) ([]domain.PlacedBet, error)

	// MarkSettlementProcessed registra un bet_id liquidado y devuelve true
	// si es la primera vez que se ve. Evita liquidar dos veces la misma
	// apuesta entre reinicios del proceso.
	MarkSettlementProcessed(ctx context.Context, betID string) (bool, error)

	// GetStats devuelve el resumen agregado del historial de apuestas.
	GetStats(ctx context.Context) (domain.BetStats, error)

	// Prune borra filas anteriores al instante dado.
	Prune(ctx context.Context, before time.Time) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
