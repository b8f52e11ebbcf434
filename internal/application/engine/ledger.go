package engine

import (
	"sync"
	"time"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Ledger lleva la contabilidad local de apuestas: reserva el stake al
// aceptarse una orden, libera exposición al liquidarse y acumula PnL.
// Es la fuente de verdad del bankroll para el evaluador; el balance del
// venue solo se usa para reconciliar al arrancar.
type Ledger struct {
	mu          sync.Mutex
	balance     float64
	exposure    float64
	maxExposure float64 // tope absoluto; 0 = sin tope
	commission  float64 // fracción retenida de las ganancias
	active      map[string]domain.PlacedBet
	pnl         float64
	history     []domain.PlacedBet
}

// NewLedger crea un ledger con el balance inicial dado.
func NewLedger(balance, maxExposure, commission float64) *Ledger {
	return &Ledger{
		balance:     balance,
		maxExposure: maxExposure,
		commission:  commission,
		active:      make(map[string]domain.PlacedBet),
	}
}

// CanPlace indica si un stake cabe dentro del balance y del tope de
// exposición absoluto.
func (l *Ledger) CanPlace(stake float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if stake <= 0 || stake > l.balance {
		return false
	}
	return l.maxExposure <= 0 || l.exposure+stake <= l.maxExposure
}

// RecordAccepted reserva el stake de una apuesta aceptada por el venue.
func (l *Ledger) RecordAccepted(bet domain.PlacedBet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active[bet.BetID] = bet
	l.balance -= bet.Stake
	l.exposure += bet.Stake
}

// Settle procesa la liquidación de una apuesta activa. payout es la
// ganancia bruta reportada por el feed (0 si perdió); la comisión se
// descuenta aquí. Devuelve el profit neto y false si el bet_id no
// corresponde a ninguna apuesta activa.
func (l *Ledger) Settle(betID, status string, payout float64) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bet, ok := l.active[betID]
	if !ok {
		return 0, false
	}
	delete(l.active, betID)

	var profit float64
	if status == string(domain.BetWon) {
		net := payout * (1 - l.commission)
		// Vuelven stake y ganancia neta.
		l.balance += bet.Stake + net
		profit = net
		bet.Status = domain.BetWon
	} else {
		// El stake ya salió del balance al colocarse.
		profit = -bet.Stake
		bet.Status = domain.BetLost
	}

	l.exposure = max(0, l.exposure-bet.Stake)
	l.pnl += profit

	now := time.Now()
	bet.Payout = profit
	bet.SettledAt = &now
	l.history = append(l.history, bet)

	return profit, true
}

// Bankroll devuelve el snapshot de balance y exposición actual.
func (l *Ledger) Bankroll() domain.BankrollState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.BankrollState{Balance: l.balance, CurrentExposure: l.exposure}
}

// Reconcile adopta el balance reportado por el venue. Se usa al
// arrancar, antes de que haya apuestas activas.
func (l *Ledger) Reconcile(funds domain.BankrollState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = funds.Balance
	l.exposure = funds.CurrentExposure
}

// PnL devuelve el resultado neto acumulado desde el arranque.
func (l *Ledger) PnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pnl
}

// ActiveBets devuelve cuántas apuestas siguen pendientes de liquidar.
func (l *Ledger) ActiveBets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// History devuelve una copia de las apuestas ya liquidadas.
func (l *Ledger) History() []domain.PlacedBet {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.PlacedBet, len(l.history))
	copy(out, l.history)
	return out
}
