package storage

// sqlite.go — persistencia del historial del bot.
//
// Estrategia:
//   - `cycles`: resumen ligero por ciclo de evaluación. Siempre 1 fila.
//   - `opportunities`: una fila por oportunidad accionable encontrada.
//   - `bets`: una fila por apuesta colocada, actualizada al liquidarse.
//   - `settlements_seen`: bet_ids ya procesados, para no liquidar dos
//     veces la misma apuesta tras un reinicio.
//   - Prune automático al arrancar: filas > 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

const schema = `
-- Resumen ligero por ciclo de evaluación
CREATE TABLE IF NOT EXISTS cycles (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    evaluated_at DATETIME NOT NULL,
    total        INTEGER  NOT NULL DEFAULT 0,
    best_edge    REAL     NOT NULL DEFAULT 0,
    shoe_id      INTEGER  NOT NULL DEFAULT 0,
    shoe_mode    TEXT     NOT NULL DEFAULT ''
);

-- Una fila por oportunidad accionable
CREATE TABLE IF NOT EXISTS opportunities (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    selection_id TEXT     NOT NULL,
    bet_name     TEXT     NOT NULL,
    side         TEXT     NOT NULL,
    true_prob    REAL     NOT NULL,
    price        REAL     NOT NULL,
    edge         REAL     NOT NULL,
    stake        REAL     NOT NULL,
    balance      REAL     NOT NULL DEFAULT 0,
    shoe_mode    TEXT     NOT NULL,
    shoe_id      INTEGER  NOT NULL DEFAULT 0,
    evaluated_at DATETIME NOT NULL
);

-- Una fila por apuesta colocada
CREATE TABLE IF NOT EXISTS bets (
    bet_id       TEXT PRIMARY KEY,
    selection_id TEXT     NOT NULL,
    bet_name     TEXT     NOT NULL,
    side         TEXT     NOT NULL,
    stake        REAL     NOT NULL,
    price        REAL     NOT NULL,
    status       TEXT     NOT NULL,
    payout       REAL     NOT NULL DEFAULT 0,
    shoe_id      INTEGER  NOT NULL DEFAULT 0,
    shoe_mode    TEXT     NOT NULL DEFAULT '',
    placed_at    DATETIME NOT NULL,
    settled_at   DATETIME
);

-- Settlements ya procesados (reemplaza al state.json original)
CREATE TABLE IF NOT EXISTS settlements_seen (
    bet_id  TEXT PRIMARY KEY,
    seen_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at   ON cycles(evaluated_at DESC);
CREATE INDEX IF NOT EXISTS idx_opp_at      ON opportunities(evaluated_at DESC);
CREATE INDEX IF NOT EXISTS idx_opp_name    ON opportunities(bet_name);
CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
`

// retention de filas históricas
const retention = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.Prune(context.Background(), time.Now().Add(-retention)); err != nil {
		slog.Warn("prune on startup failed", "err", err)
	}
	return s, nil
}

// SaveOpportunities persiste el resumen del ciclo y una fila por
// oportunidad encontrada.
func (s *SQLiteStorage) SaveOpportunities(ctx context.Context, opportunities []domain.Opportunity) error {
	now := time.Now().UTC()

	summary := struct {
		bestEdge float64
		shoeID   int
		shoeMode string
	}{}
	for _, opp := range opportunities {
		if opp.Edge > summary.bestEdge {
			summary.bestEdge = opp.Edge
		}
		summary.shoeID = opp.ShoeID
		summary.shoeMode = opp.ShoeMode.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveOpportunities: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (evaluated_at, total, best_edge, shoe_id, shoe_mode) VALUES (?, ?, ?, ?, ?)`,
		now, len(opportunities), summary.bestEdge, summary.shoeID, summary.shoeMode,
	); err != nil {
		return fmt.Errorf("storage.SaveOpportunities: insert cycle: %w", err)
	}

	for _, opp := range opportunities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO opportunities
			   (selection_id, bet_name, side, true_prob, price, edge, stake, balance, shoe_mode, shoe_id, evaluated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			opp.SelectionID, opp.BetName, string(opp.Side), opp.TrueProb, opp.Price,
			opp.Edge, opp.RecommendedStake, opp.BalanceAtEvaluation,
			opp.ShoeMode.String(), opp.ShoeID, opp.EvaluatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("storage.SaveOpportunities: insert opportunity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveOpportunities: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve las oportunidades registradas en el rango dado,
// más recientes primero.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT selection_id, bet_name, side, true_prob, price, edge, stake, balance, shoe_mode, shoe_id, evaluated_at
		   FROM opportunities
		  WHERE evaluated_at BETWEEN ? AND ?
		  ORDER BY evaluated_at DESC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: %w", err)
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var side, mode string
		if err := rows.Scan(&opp.SelectionID, &opp.BetName, &side, &opp.TrueProb, &opp.Price,
			&opp.Edge, &opp.RecommendedStake, &opp.BalanceAtEvaluation,
			&mode, &opp.ShoeID, &opp.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan: %w", err)
		}
		opp.Side = domain.Side(side)
		opp.ShoeMode = parseMode(mode)
		out = append(out, opp)
	}
	return out, rows.Err()
}

// SaveBet registra una apuesta aceptada.
func (s *SQLiteStorage) SaveBet(ctx context.Context, bet domain.PlacedBet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bets
		   (bet_id, selection_id, bet_name, side, stake, price, status, payout, shoe_id, shoe_mode, placed_at, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bet.BetID, bet.SelectionID, bet.BetName, string(bet.Side), bet.Stake, bet.Price,
		string(bet.Status), bet.Payout, bet.ShoeID, bet.ShoeMode.String(),
		bet.PlacedAt.UTC(), bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveBet: %w", err)
	}
	return nil
}

// SettleBet actualiza estado y payout de una apuesta registrada.
func (s *SQLiteStorage) SettleBet(ctx context.Context, betID string, status domain.BetStatus, payout float64, settledAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bets SET status = ?, payout = ?, settled_at = ? WHERE bet_id = ?`,
		string(status), payout, settledAt.UTC(), betID,
	)
	if err != nil {
		return fmt.Errorf("storage.SettleBet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.SettleBet: %w: bet %q", domain.ErrBetNotFound, betID)
	}
	return nil
}

// GetOpenBets devuelve las apuestas todavía PENDING.
func (s *SQLiteStorage) GetOpenBets(ctx context.Context) ([]domain.PlacedBet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bet_id, selection_id, bet_name, side, stake, price, status, payout, shoe_id, shoe_mode, placed_at, settled_at
		   FROM bets WHERE status = ? ORDER BY placed_at`,
		string(domain.BetPending),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetOpenBets: %w", err)
	}
	defer rows.Close()

	var out []domain.PlacedBet
	for rows.Next() {
		var bet domain.PlacedBet
		var side, status, mode string
		if err := rows.Scan(&bet.BetID, &bet.SelectionID, &bet.BetName, &side, &bet.Stake,
			&bet.Price, &status, &bet.Payout, &bet.ShoeID, &mode,
			&bet.PlacedAt, &bet.SettledAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetOpenBets: scan: %w", err)
		}
		bet.Side = domain.Side(side)
		bet.Status = domain.BetStatus(status)
		bet.ShoeMode = parseMode(mode)
		out = append(out, bet)
	}
	return out, rows.Err()
}

// MarkSettlementProcessed registra el bet_id y devuelve true si es la
// primera vez que se ve.
func (s *SQLiteStorage) MarkSettlementProcessed(ctx context.Context, betID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settlements_seen (bet_id, seen_at) VALUES (?, ?)`,
		betID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("storage.MarkSettlementProcessed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage.MarkSettlementProcessed: %w", err)
	}
	return n > 0, nil
}

// GetStats devuelve el resumen agregado del historial de apuestas.
func (s *SQLiteStorage) GetStats(ctx context.Context) (domain.BetStats, error) {
	var stats domain.BetStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status = 'WON'), 0),
		        COALESCE(SUM(status = 'LOST'), 0),
		        COALESCE(SUM(status = 'PENDING'), 0),
		        COALESCE(SUM(stake), 0),
		        COALESCE(SUM(payout), 0)
		   FROM bets`,
	).Scan(&stats.TotalBets, &stats.Won, &stats.Lost, &stats.Pending, &stats.TotalStaked, &stats.NetPnL)
	if err != nil {
		return domain.BetStats{}, fmt.Errorf("storage.GetStats: %w", err)
	}
	return stats, nil
}

// Prune borra filas anteriores al instante dado.
func (s *SQLiteStorage) Prune(ctx context.Context, before time.Time) error {
	cutoff := before.UTC()
	for _, q := range []string{
		`DELETE FROM cycles WHERE evaluated_at < ?`,
		`DELETE FROM opportunities WHERE evaluated_at < ?`,
		`DELETE FROM bets WHERE placed_at < ? AND status != 'PENDING'`,
		`DELETE FROM settlements_seen WHERE seen_at < ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, cutoff); err != nil {
			return fmt.Errorf("storage.Prune: %w", err)
		}
	}
	return nil
}

// Close cierra la conexión.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func parseMode(s string) domain.CountMode {
	if s == domain.ModeApproximate.String() {
		return domain.ModeApproximate
	}
	return domain.ModeExact
}
