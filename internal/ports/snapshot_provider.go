package ports

import (
	"context"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// SnapshotProvider obtiene el estado actual de un canal de Baccarat:
// cotizaciones, progreso del shoe y liquidaciones pendientes.
type SnapshotProvider interface {
	// FetchSnapshot devuelve el snapshot más reciente del canal.
	// RankCounts puede ser nil si el proveedor solo expone agregados.
	FetchSnapshot(ctx context.Context, channelID string) (domain.Snapshot, error)
}
