package evaluator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
	"github.com/SteveEddy1974/gamble-bot/internal/probability"
)

// stubModel permite controlar probabilidad o fallo por side bet.
type stubModel struct {
	probs map[string]float64
	errs  map[string]error
}

func (m *stubModel) Probability(betName string, _ domain.ShoeState) (float64, error) {
	if err, ok := m.errs[betName]; ok {
		return 0, err
	}
	p, ok := m.probs[betName]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownSideBet, betName)
	}
	return p, nil
}

func testConfig() Config {
	return Config{
		MinEdge:    0.02,
		Commission: 0,
		Staking: domain.StakingConfig{
			KellyShrink:     0.25,
			Tiers:           domain.TierTable{{Threshold: 0, Cap: 0.10}},
			MaxExposurePct:  0.20,
			MinBetIncrement: 0.01,
		},
	}
}

func quote(name string, price float64) domain.MarketQuote {
	return domain.MarketQuote{
		SelectionID: "sel-" + name,
		BetName:     name,
		Price:       price,
		Side:        domain.SideBack,
		Status:      domain.StatusInPlay,
		Timestamp:   time.Now(),
	}
}

func TestEvaluateCycle_RankedByEdgeDescending(t *testing.T) {
	model := &stubModel{probs: map[string]float64{
		"A": 0.40, // a 4.0: edge 0.60
		"B": 0.30, // a 4.0: edge 0.20
		"C": 0.35, // a 4.0: edge 0.40
	}}
	ev := New(model, testConfig())

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("B", 4.0), quote("A", 4.0), quote("C", 4.0)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 3)
	assert.Equal(t, "A", opps[0].BetName)
	assert.Equal(t, "C", opps[1].BetName)
	assert.Equal(t, "B", opps[2].BetName)
	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].Edge, opps[i].Edge)
	}
}

func TestEvaluateCycle_PartialFailureTolerance(t *testing.T) {
	// Un fallo de cartas insuficientes en una side bet no aborta el ciclo.
	model := &stubModel{
		probs: map[string]float64{"A": 0.40},
		errs:  map[string]error{"B": fmt.Errorf("%w: 3 remaining", domain.ErrInsufficientCards)},
	}
	ev := New(model, testConfig())

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("B", 4.0), quote("A", 4.0)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "A", opps[0].BetName)
}

func TestEvaluateCycle_UnknownBetSkipped(t *testing.T) {
	model := &stubModel{probs: map[string]float64{"A": 0.40}}
	ev := New(model, testConfig())

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("Dragon Bonus", 9.0), quote("A", 4.0)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 1)
}

func TestEvaluateCycle_InvalidPriceAbortsCycle(t *testing.T) {
	model := &stubModel{probs: map[string]float64{"A": 0.40}}
	ev := New(model, testConfig())

	_, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("A", 1.0)},
		domain.BankrollState{Balance: 1000},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEvaluateCycle_MinEdgeThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.MinEdge = 0.25
	model := &stubModel{probs: map[string]float64{
		"A": 0.40, // edge 0.60 → pasa
		"B": 0.30, // edge 0.20 → bajo el umbral
	}}
	ev := New(model, cfg)

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("A", 4.0), quote("B", 4.0)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "A", opps[0].BetName)
}

func TestEvaluateCycle_NotInPlaySkipped(t *testing.T) {
	model := &stubModel{probs: map[string]float64{"A": 0.40}}
	ev := New(model, testConfig())

	q := quote("A", 4.0)
	q.Status = domain.StatusLoser

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{q},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestEvaluateCycle_ExposureAccumulatesWithinCycle(t *testing.T) {
	// Dos oportunidades enormes: la segunda solo recibe el headroom restante,
	// y la suma nunca rebasa max_exposure_pct × balance.
	cfg := testConfig()
	cfg.Staking.KellyShrink = 1.0
	cfg.Staking.Tiers = domain.TierTable{{Threshold: 0, Cap: 0.15}}
	model := &stubModel{probs: map[string]float64{"A": 0.90, "B": 0.90}}
	ev := New(model, cfg)

	bankroll := domain.BankrollState{Balance: 1000}
	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote("A", 2.0), quote("B", 2.0)},
		bankroll,
	)
	require.NoError(t, err)

	total := 0.0
	for _, opp := range opps {
		total += opp.RecommendedStake
	}
	assert.LessOrEqual(t, total, bankroll.Balance*cfg.Staking.MaxExposurePct+1e-9)
}

func TestEvaluateCycle_LayQuote(t *testing.T) {
	// Layar Pocket Pair sobrevalorado: p=0.0747 pero el precio implica 0.19.
	model := &stubModel{probs: map[string]float64{domain.BetPocketPair: 0.0747}}
	ev := New(model, testConfig())

	q := quote(domain.BetPocketPair, 5.25)
	q.Side = domain.SideLay

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{q},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, domain.SideLay, opps[0].Side)
	assert.InDelta(t, 0.143, opps[0].Edge, 0.001)
	assert.Greater(t, opps[0].RecommendedStake, 0.0)
}

// --- escenarios con el modelo real ---

func TestEvaluateCycle_PocketPairAtFivePointTwoFive(t *testing.T) {
	// Shoe fresco de 8 barajas, Pocket Pair cotizado a 5.25: la probabilidad
	// real ≈ 0.0747 queda muy por debajo del break-even 0.1905 → edge
	// fuertemente negativo → excluida con cualquier umbral por defecto.
	ev := New(probability.Default(), testConfig())

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote(domain.BetPocketPair, 5.25)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestEvaluateCycle_DepletedShoeSkipsAllFourCardBets(t *testing.T) {
	// Con 3 cartas restantes ningún reparto de 4 cartas es posible: todas
	// las quotes se saltan sin abortar el ciclo.
	ev := New(probability.Default(), testConfig())

	shoe := domain.FreshShoe(8, 1)
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		shoe.CardsDealt += shoe.Counts[r]
		shoe.Counts[r] = 0
	}
	shoe.Counts[5] = 3
	shoe.CardsDealt -= 3
	require.NoError(t, shoe.Validate())

	opps, err := ev.EvaluateCycle(
		shoe,
		[]domain.MarketQuote{
			quote(domain.BetPocketPair, 12.0),
			quote(domain.BetNaturalWin, 4.0),
		},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestEvaluateCycle_RealModelFindsValue(t *testing.T) {
	// Natural Win real ≈ 0.343; a precio 4.0 el edge ≈ 0.372 → accionable.
	ev := New(probability.Default(), testConfig())

	opps, err := ev.EvaluateCycle(
		domain.FreshShoe(8, 1),
		[]domain.MarketQuote{quote(domain.BetNaturalWin, 4.0)},
		domain.BankrollState{Balance: 1000},
	)
	require.NoError(t, err)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.InDelta(t, 0.3430, opp.TrueProb, 0.001)
	assert.InDelta(t, 0.372, opp.Edge, 0.001)
	assert.Equal(t, domain.ModeExact, opp.ShoeMode)
	assert.True(t, opp.Actionable())
	assert.Equal(t, 1000.0, opp.BalanceAtEvaluation)
}
