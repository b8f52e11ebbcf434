package domain

import "time"

// BetStatus es el estado de vida de una apuesta colocada.
type BetStatus string

const (
	BetPending BetStatus = "PENDING"
	BetWon     BetStatus = "WON"
	BetLost    BetStatus = "LOST"
)

// BetRequest es la orden que el engine envía al ejecutor.
type BetRequest struct {
	MarketID    string  `json:"market_id"`
	RoundID     string  `json:"round_id"`
	SelectionID string  `json:"selection_id"`
	BetName     string  `json:"bet_name"`
	Side        Side    `json:"side"`
	Stake       float64 `json:"stake"`
	Price       float64 `json:"price"`
}

// PlacedBet es una apuesta aceptada por el venue (o simulada en paper).
type PlacedBet struct {
	BetID       string     `json:"bet_id"`
	SelectionID string     `json:"selection_id"`
	BetName     string     `json:"bet_name"`
	Side        Side       `json:"side"`
	Stake       float64    `json:"stake"`
	Price       float64    `json:"price"`
	Status      BetStatus  `json:"status"`
	// Payout es el resultado neto tras liquidar: positivo si ganó
	// (descontada la comisión), -Stake si perdió. Cero mientras PENDING.
	Payout    float64    `json:"payout"`
	ShoeID    int        `json:"shoe_id"`
	ShoeMode  CountMode  `json:"shoe_mode"`
	PlacedAt  time.Time  `json:"placed_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// Liability devuelve el riesgo máximo de la apuesta: el stake para BACK,
// stake*(price-1) para LAY.
func (b PlacedBet) Liability() float64 {
	if b.Side == SideLay {
		return b.Stake * (b.Price - 1)
	}
	return b.Stake
}

// Settled indica si la apuesta ya fue liquidada.
func (b PlacedBet) Settled() bool {
	return b.Status != BetPending
}

// BetStats resume el historial de apuestas persistido.
type BetStats struct {
	TotalBets   int     `json:"total_bets"`
	Won         int     `json:"won"`
	Lost        int     `json:"lost"`
	Pending     int     `json:"pending"`
	TotalStaked float64 `json:"total_staked"`
	NetPnL      float64 `json:"net_pnl"`
}

// WinRate devuelve la fracción de apuestas liquidadas que ganaron.
func (s BetStats) WinRate() float64 {
	settled := s.Won + s.Lost
	if settled == 0 {
		return 0
	}
	return float64(s.Won) / float64(settled)
}
