package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogBet(t *testing.T, name string) SideBetDefinition {
	t.Helper()
	for _, def := range SideBetCatalog() {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("bet %q not in catalog", name)
	return SideBetDefinition{}
}

func TestDeal_Totals(t *testing.T) {
	// Player: 7 + K(0) = 7; Banker: 9 + 6 = 15 → 5.
	d := Deal{P1: 7, B1: 9, P2: RankKing, B2: 6}
	assert.Equal(t, 7, d.PlayerTotal())
	assert.Equal(t, 5, d.BankerTotal())
	assert.Equal(t, 7, d.HighestTotal())
}

func TestSideBetCatalog_Complete(t *testing.T) {
	names := make(map[string]bool)
	for _, def := range SideBetCatalog() {
		names[def.Name] = true
		assert.Equal(t, 4, def.CardsRequired, "%s", def.Name)
		require.NotNil(t, def.Wins, "%s", def.Name)
	}
	assert.True(t, names[BetPocketPair])
	assert.True(t, names[BetPocketPairAnyHand])
	assert.True(t, names[BetNaturalWin])
	assert.True(t, names[BetNaturalTie])
	assert.True(t, names[BetHighestHandNine])
	assert.True(t, names[BetHighestHandOdd])
}

func TestPocketPair_PlayerHandOnly(t *testing.T) {
	def := catalogBet(t, BetPocketPair)

	assert.True(t, def.Wins(Deal{P1: 5, B1: 2, P2: 5, B2: 9}))
	// El par del Banker no cuenta para Pocket Pair.
	assert.False(t, def.Wins(Deal{P1: 5, B1: 2, P2: 6, B2: 2}))
	assert.False(t, def.Wins(Deal{P1: 5, B1: 2, P2: 6, B2: 9}))
}

func TestPocketPairAnyHand_EitherHand(t *testing.T) {
	def := catalogBet(t, BetPocketPairAnyHand)

	assert.True(t, def.Wins(Deal{P1: 5, B1: 2, P2: 5, B2: 9}))
	assert.True(t, def.Wins(Deal{P1: 5, B1: 2, P2: 6, B2: 2}))
	assert.False(t, def.Wins(Deal{P1: 5, B1: 2, P2: 6, B2: 9}))
}

func TestNaturalWin(t *testing.T) {
	def := catalogBet(t, BetNaturalWin)

	// Player natural 9: 4+5.
	assert.True(t, def.Wins(Deal{P1: 4, B1: 2, P2: 5, B2: 3}))
	// Banker natural 8: 10(0)+8.
	assert.True(t, def.Wins(Deal{P1: 2, B1: 10, P2: 3, B2: 8}))
	// 7 vs 5: ninguno natural.
	assert.False(t, def.Wins(Deal{P1: 3, B1: 2, P2: 4, B2: 3}))
}

func TestNaturalTie(t *testing.T) {
	def := catalogBet(t, BetNaturalTie)

	// Ambos 9 (la Q vale cero).
	assert.True(t, def.Wins(Deal{P1: 4, B1: 9, P2: 5, B2: 12}))
	// 9 vs 8 → naturales pero no empate.
	assert.False(t, def.Wins(Deal{P1: 4, B1: 3, P2: 5, B2: 5}))
	// Empate no natural (7 vs 7).
	assert.False(t, def.Wins(Deal{P1: 3, B1: 2, P2: 4, B2: 5}))
}

func TestHighestHandNine(t *testing.T) {
	def := catalogBet(t, BetHighestHandNine)

	assert.True(t, def.Wins(Deal{P1: 4, B1: 2, P2: 5, B2: 3}))  // 9 vs 5
	assert.False(t, def.Wins(Deal{P1: 4, B1: 2, P2: 4, B2: 3})) // 8 vs 5
}

func TestHighestHandOdd(t *testing.T) {
	def := catalogBet(t, BetHighestHandOdd)

	assert.True(t, def.Wins(Deal{P1: 3, B1: 2, P2: 4, B2: 2}))  // 7 vs 4
	assert.False(t, def.Wins(Deal{P1: 4, B1: 2, P2: 4, B2: 3})) // 8 vs 5
}

func TestMarketQuote_InPlay(t *testing.T) {
	q := MarketQuote{Status: StatusInPlay}
	assert.True(t, q.InPlay())
	q.Status = StatusLoser
	assert.False(t, q.InPlay())
}

func TestOpportunity_Helpers(t *testing.T) {
	o := Opportunity{Price: 4.0, Edge: 0.2, RecommendedStake: 25}
	assert.InDelta(t, 0.25, o.ImpliedProb(), 1e-12)
	assert.InDelta(t, 75.0, o.PotentialProfit(), 1e-12)
	assert.True(t, o.Actionable())

	o.RecommendedStake = 0
	assert.False(t, o.Actionable())
}
