package betfair

import (
	"time"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// toSnapshot convierte el channelSnapshot wire al Snapshot de dominio.
// Cada selección produce hasta dos quotes: una BACK y una LAY, según qué
// precios publique el feed.
func toSnapshot(channelID string, cs channelSnapshot, now time.Time) domain.Snapshot {
	snap := domain.Snapshot{
		ChannelID:      channelID,
		MarketID:       cs.MarketID,
		RoundID:        cs.Round,
		CardsDealt:     cs.Shoe.CardsDealt,
		CardsRemaining: cs.Shoe.CardsRemaining,
		Timestamp:      now,
	}

	if len(cs.Shoe.Cards) > 0 {
		snap.RankCounts = make(map[domain.Rank]int, len(cs.Shoe.Cards))
		for _, c := range cs.Shoe.Cards {
			if c.Rank < int(domain.RankAce) || c.Rank > int(domain.RankKing) {
				continue
			}
			snap.RankCounts[domain.Rank(c.Rank)] = c.Count
		}
	}

	for _, sel := range cs.Selections {
		status := domain.SelectionStatus(sel.Status)
		if sel.BestBackPrice != nil {
			snap.Selections = append(snap.Selections, domain.MarketQuote{
				SelectionID: sel.SelectionID,
				BetName:     sel.Name,
				Price:       *sel.BestBackPrice,
				Side:        domain.SideBack,
				Status:      status,
				Timestamp:   now,
			})
		}
		if sel.BestLayPrice != nil {
			snap.Selections = append(snap.Selections, domain.MarketQuote{
				SelectionID: sel.SelectionID,
				BetName:     sel.Name,
				Price:       *sel.BestLayPrice,
				Side:        domain.SideLay,
				Status:      status,
				Timestamp:   now,
			})
		}
	}

	for _, st := range cs.Settlements {
		snap.Settlements = append(snap.Settlements, domain.Settlement{
			BetID:       st.BetID,
			SelectionID: st.SelectionID,
			Status:      st.Status,
			Payout:      st.Payout,
		})
	}

	return snap
}
