package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOpp(name string, edge float64, at time.Time) domain.Opportunity {
	return domain.Opportunity{
		SelectionID:         "2",
		BetName:             name,
		Side:                domain.SideBack,
		TrueProb:            0.343,
		Price:               4.0,
		Edge:                edge,
		RecommendedStake:    12.5,
		BalanceAtEvaluation: 1000,
		ShoeMode:            domain.ModeExact,
		ShoeID:              1,
		EvaluatedAt:         at,
	}
}

func sampleBet(id string) domain.PlacedBet {
	return domain.PlacedBet{
		BetID:       id,
		SelectionID: "2",
		BetName:     domain.BetNaturalWin,
		Side:        domain.SideBack,
		Stake:       12.5,
		Price:       4.0,
		Status:      domain.BetPending,
		ShoeID:      1,
		ShoeMode:    domain.ModeExact,
		PlacedAt:    time.Now().UTC(),
	}
}

func TestSQLiteStorage_SaveAndGetHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	opps := []domain.Opportunity{
		sampleOpp(domain.BetNaturalWin, 0.372, now),
		sampleOpp(domain.BetHighestHandOdd, 0.05, now),
	}
	require.NoError(t, s.SaveOpportunities(ctx, opps))

	got, err := s.GetHistory(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)

	names := []string{got[0].BetName, got[1].BetName}
	assert.Contains(t, names, domain.BetNaturalWin)
	assert.Contains(t, names, domain.BetHighestHandOdd)
	assert.Equal(t, domain.ModeExact, got[0].ShoeMode)
	assert.Equal(t, 12.5, got[0].RecommendedStake)

	// Fuera del rango: vacío.
	got, err = s.GetHistory(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStorage_EmptyCycleStillRecorded(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.SaveOpportunities(context.Background(), nil))
}

func TestSQLiteStorage_BetLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBet(ctx, sampleBet("bet-1")))
	require.NoError(t, s.SaveBet(ctx, sampleBet("bet-2")))

	open, err := s.GetOpenBets(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, domain.BetPending, open[0].Status)
	assert.Nil(t, open[0].SettledAt)

	settledAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.SettleBet(ctx, "bet-1", domain.BetWon, 37.5, settledAt))

	open, err = s.GetOpenBets(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "bet-2", open[0].BetID)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBets)
	assert.Equal(t, 1, stats.Won)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 25.0, stats.TotalStaked)
	assert.Equal(t, 37.5, stats.NetPnL)
}

func TestSQLiteStorage_SettleUnknownBet(t *testing.T) {
	s := newTestStorage(t)
	err := s.SettleBet(context.Background(), "missing", domain.BetLost, 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrBetNotFound)
}

func TestSQLiteStorage_SettlementDedup(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.MarkSettlementProcessed(ctx, "bet-9")
	require.NoError(t, err)
	assert.True(t, first)

	// La segunda vez ya no es nueva: el engine la ignora.
	again, err := s.MarkSettlementProcessed(ctx, "bet-9")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := s.MarkSettlementProcessed(ctx, "bet-10")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestSQLiteStorage_Prune(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	oldOpp := sampleOpp(domain.BetNaturalWin, 0.1, old)
	require.NoError(t, s.SaveOpportunities(ctx, []domain.Opportunity{oldOpp}))

	oldBet := sampleBet("bet-old")
	oldBet.PlacedAt = old
	require.NoError(t, s.SaveBet(ctx, oldBet))
	require.NoError(t, s.SettleBet(ctx, "bet-old", domain.BetLost, -12.5, old))

	// Una pendiente vieja nunca se borra.
	pending := sampleBet("bet-pending")
	pending.PlacedAt = old
	require.NoError(t, s.SaveBet(ctx, pending))

	require.NoError(t, s.Prune(ctx, time.Now().Add(-24*time.Hour)))

	got, err := s.GetHistory(ctx, old.Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBets)
	assert.Equal(t, 1, stats.Pending)
}
