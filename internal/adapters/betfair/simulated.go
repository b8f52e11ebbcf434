package betfair

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
	"github.com/SteveEddy1974/gamble-bot/internal/probability"
)

// SimulatorConfig parametriza el venue simulado.
type SimulatorConfig struct {
	Decks        int     // barajas del shoe (default 8)
	Decrement    int     // cartas repartidas por poll (default 4)
	ResetAfter   int     // polls hasta resetear el shoe; 0 = resetear al agotarse
	SettleDelay  int     // polls hasta liquidar una apuesta pendiente (default 2)
	StartBalance float64 // balance inicial de la cuenta simulada
	Seed         int64   // semilla del RNG para corridas reproducibles
}

func (c *SimulatorConfig) applyDefaults() {
	if c.Decks <= 0 {
		c.Decks = domain.DefaultDecks
	}
	if c.Decrement <= 0 {
		c.Decrement = 4
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2
	}
	if c.StartBalance <= 0 {
		c.StartBalance = 1000
	}
}

type simBet struct {
	bet       domain.PlacedBet
	trueProb  float64
	placedAt  int // iteración en la que se colocó
}

// Simulator es un venue en memoria para paper trading: genera snapshots
// con un shoe que se agota carta a carta, precios que oscilan, y liquida
// las apuestas pendientes sorteando contra la probabilidad real de la
// side bet en el momento de colocarse.
// Implementa ports.SnapshotProvider y ports.BetExecutor.
type Simulator struct {
	mu        sync.Mutex
	cfg       SimulatorConfig
	rng       *rand.Rand
	model     *probability.Model
	counts    [domain.NumRanks + 1]int
	remaining int
	iteration int
	round     int
	pending   map[string]simBet
	order     []string // bet IDs en orden de colocación
	balance   float64
	exposure  float64
}

// NewSimulator crea un Simulator determinista a partir de la semilla.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	cfg.applyDefaults()
	s := &Simulator{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		model:     probability.Default(),
		pending:   make(map[string]simBet),
		balance:   cfg.StartBalance,
	}
	s.resetShoe()
	return s
}

func (s *Simulator) resetShoe() {
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		s.counts[r] = domain.CardsPerRank * s.cfg.Decks
	}
	s.remaining = domain.CardsPerDeck * s.cfg.Decks
	s.iteration = 0
	s.round++
}

// FetchSnapshot avanza la simulación un poll: reparte cartas (o resetea
// el shoe), recalcula precios y emite los settlements que vencen.
func (s *Simulator) FetchSnapshot(_ context.Context, channelID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	full := domain.CardsPerDeck * s.cfg.Decks
	needsReset := s.remaining < s.cfg.Decrement
	if s.cfg.ResetAfter > 0 && s.iteration >= s.cfg.ResetAfter {
		needsReset = true
	}
	if needsReset {
		s.resetShoe()
	} else {
		s.deal(s.cfg.Decrement)
	}

	cs := channelSnapshot{
		MarketID: "sim-market",
		Round:    fmt.Sprintf("%d.%d", s.round, s.iteration),
		Shoe: shoeElem{
			CardsDealt:     full - s.remaining,
			CardsRemaining: s.remaining,
		},
	}
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		cs.Shoe.Cards = append(cs.Shoe.Cards, cardElem{Rank: int(r), Count: s.counts[r]})
	}
	cs.Selections = s.quotedSelections()
	cs.Settlements = s.dueSettlements()

	s.iteration++
	return toSnapshot(channelID, cs, time.Now()), nil
}

// deal quita n cartas round-robin empezando por un rango que rota con
// la iteración, igual que repartiría un shoe razonablemente mezclado.
func (s *Simulator) deal(n int) {
	r := domain.Rank(s.iteration%domain.NumRanks) + 1
	for n > 0 && s.remaining > 0 {
		if s.counts[r] > 0 {
			s.counts[r]--
			s.remaining--
			n--
		}
		r = r%domain.NumRanks + 1
	}
}

// quotedSelections publica las dos selecciones del canal simulado con
// precios que oscilan suavemente alrededor de valores plausibles.
func (s *Simulator) quotedSelections() []selectionElem {
	pocketPrice := round3(5.0 + float64(s.iteration%3)*0.1)
	naturalPrice := round3(3.0 + float64(s.iteration%5)*0.05)
	pocketLay := round3(pocketPrice + 0.5)
	naturalLay := round3(naturalPrice + 0.4)

	return []selectionElem{
		{
			SelectionID:   "1",
			Name:          domain.BetPocketPairAnyHand,
			Status:        string(domain.StatusInPlay),
			BestBackPrice: &pocketPrice,
			BestLayPrice:  &pocketLay,
		},
		{
			SelectionID:   "2",
			Name:          domain.BetNaturalWin,
			Status:        string(domain.StatusInPlay),
			BestBackPrice: &naturalPrice,
			BestLayPrice:  &naturalLay,
		},
	}
}

// dueSettlements liquida las apuestas que llevan settleDelay polls
// pendientes, sorteando el resultado contra su probabilidad real.
// Recorre las pendientes en orden de colocación: cada apuesta consume
// siempre el mismo draw del RNG, con lo que la misma semilla produce
// los mismos resultados.
func (s *Simulator) dueSettlements() []settlementElem {
	var out []settlementElem
	var kept []string
	for _, id := range s.order {
		pb, ok := s.pending[id]
		if !ok {
			continue
		}
		if s.iteration-pb.placedAt < s.cfg.SettleDelay {
			kept = append(kept, id)
			continue
		}
		won := s.rng.Float64() < pb.trueProb
		st := settlementElem{BetID: id, SelectionID: pb.bet.SelectionID, Status: "LOST"}
		if won {
			st.Status = "WON"
			st.Payout = round2(pb.bet.Stake * (pb.bet.Price - 1))
		}
		out = append(out, st)
		delete(s.pending, id)

		// La cuenta simulada devuelve stake+ganancia al liquidar.
		s.exposure = max(0, s.exposure-pb.bet.Stake)
		if won {
			s.balance += pb.bet.Stake + st.Payout
		}
	}
	s.order = kept
	return out
}

// PlaceBet acepta la orden, reserva el stake y deja la apuesta pendiente
// de liquidación.
func (s *Simulator) PlaceBet(_ context.Context, req domain.BetRequest) (domain.PlacedBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Stake > s.balance {
		return domain.PlacedBet{}, fmt.Errorf("betfair.Simulator.PlaceBet: %w: stake %.2f exceeds balance %.2f",
			domain.ErrInvalidInput, req.Stake, s.balance)
	}

	shoe := domain.ShoeState{
		Counts:     s.counts,
		TotalCards: domain.CardsPerDeck * s.cfg.Decks,
		ShoeID:     s.round,
		Mode:       domain.ModeExact,
	}
	shoe.CardsDealt = shoe.TotalCards - s.remaining

	trueProb, err := s.model.Probability(req.BetName, shoe)
	if err != nil {
		// Side bet desconocida o shoe agotado: sortear al precio justo.
		trueProb = 1 / req.Price
	}
	if req.Side == domain.SideLay {
		trueProb = 1 - trueProb
	}

	bet := domain.PlacedBet{
		BetID:       uuid.NewString(),
		SelectionID: req.SelectionID,
		BetName:     req.BetName,
		Side:        req.Side,
		Stake:       req.Stake,
		Price:       req.Price,
		Status:      domain.BetPending,
		ShoeID:      s.round,
		ShoeMode:    domain.ModeExact,
		PlacedAt:    time.Now(),
	}
	s.pending[bet.BetID] = simBet{bet: bet, trueProb: trueProb, placedAt: s.iteration}
	s.order = append(s.order, bet.BetID)
	s.balance -= req.Stake
	s.exposure += req.Stake
	return bet, nil
}

// AccountFunds devuelve el estado de la cuenta simulada.
func (s *Simulator) AccountFunds(context.Context) (domain.BankrollState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.BankrollState{Balance: s.balance, CurrentExposure: s.exposure}, nil
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round3(v float64) float64 { return float64(int(v*1000+0.5)) / 1000 }
