package domain

import "time"

// Side es el lado de una apuesta en el mercado de intercambio.
type Side string

const (
	SideBack Side = "BACK"
	SideLay  Side = "LAY"
)

// SelectionStatus es el estado de una selección dentro del snapshot.
type SelectionStatus string

const (
	StatusInPlay SelectionStatus = "IN_PLAY"
	StatusWinner SelectionStatus = "WINNER"
	StatusLoser  SelectionStatus = "LOSER"
)

// MarketQuote es el precio publicado para una side bet durante un ciclo.
// Transitorio: vive solo durante la evaluación, nunca se persiste como
// estado autoritativo.
type MarketQuote struct {
	SelectionID string
	BetName     string
	Price       float64 // precio decimal, > 1.0
	Side        Side
	Status      SelectionStatus
	Timestamp   time.Time
}

// InPlay devuelve true si la selección acepta apuestas este ciclo.
func (q MarketQuote) InPlay() bool { return q.Status == StatusInPlay }

// Settlement es la resolución de una apuesta previa reportada por el feed.
type Settlement struct {
	BetID       string
	SelectionID string
	Status      string // "WON" | "LOST"
	Payout      float64
}

// Snapshot es el estado crudo del canal en un ciclo de polling: conteo del
// shoe (idealmente por rango), quotes activas y settlements pendientes.
type Snapshot struct {
	ChannelID      string
	MarketID       string
	RoundID        string
	CardsDealt     int
	CardsRemaining int
	// RankCounts es el conteo por rango reportado por el feed, o nil si el
	// feed solo expone el agregado (el tracker cae a modo aproximado).
	RankCounts  map[Rank]int
	Selections  []MarketQuote
	Settlements []Settlement
	Timestamp   time.Time
}

// BankrollState es el snapshot de bankroll que el caller entrega al núcleo en
// cada evaluación. El núcleo lo lee, nunca lo muta: el ledger es del caller.
type BankrollState struct {
	Balance         float64
	CurrentExposure float64
}
