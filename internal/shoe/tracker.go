// Package shoe mantiene el conteo de cartas del shoe actual a partir de los
// snapshots del feed, detectando resets de shoe entre observaciones.
package shoe

import (
	"log/slog"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Tracker deriva un domain.ShoeState por snapshot. Cada canal/mesa debe tener
// su propia instancia: no hay estado compartido entre trackers y el tipo no
// es seguro para uso concurrente.
type Tracker struct {
	decks       int
	fullCards   int
	state       domain.ShoeState
	initialized bool
}

// NewTracker crea un Tracker para un shoe de N barajas (0 = 8 barajas).
func NewTracker(decks int) *Tracker {
	if decks <= 0 {
		decks = domain.DefaultDecks
	}
	return &Tracker{
		decks:     decks,
		fullCards: decks * domain.CardsPerDeck,
	}
}

// State devuelve el último estado observado (cero antes del primer snapshot).
func (t *Tracker) State() domain.ShoeState { return t.state }

// Observe incorpora un snapshot y devuelve el nuevo ShoeState.
//
// Detección de reset: se considera shoe nuevo cuando el conteo restante
// CRECIÓ respecto a la última observación, o cuando es exactamente el máximo
// del shoe completo (un snapshot que llega justo en la última carta del shoe
// anterior sería ambiguo; tratamos ambos disparadores como reset). El segundo
// disparador solo aplica si el shoe anterior ya había repartido cartas: los
// snapshots repetidos de un shoe fresco no incrementan la generación.
func (t *Tracker) Observe(snap domain.Snapshot) domain.ShoeState {
	remaining := snap.CardsRemaining

	if !t.initialized {
		t.state = t.rebuild(snap, 1)
		t.initialized = true
		return t.state
	}

	prev := t.state.CardsRemaining()
	if remaining > prev || (remaining >= t.fullCards && prev < t.fullCards) {
		next := t.rebuild(snap, t.state.ShoeID+1)
		slog.Info("shoe reset detected",
			"shoe_id", next.ShoeID,
			"prev_remaining", prev,
			"remaining", remaining,
		)
		t.state = next
		return t.state
	}

	t.state = t.advance(snap)
	return t.state
}

// rebuild construye el estado desde cero: composición completa de N barajas
// menos lo ya repartido según el snapshot.
func (t *Tracker) rebuild(snap domain.Snapshot, shoeID int) domain.ShoeState {
	s := domain.FreshShoe(t.decks, shoeID)
	if exact, ok := t.adoptRankCounts(s, snap); ok {
		return exact
	}
	return t.depleteUniform(s, snap.CardsRemaining)
}

// advance aplica al estado actual las cartas repartidas desde el último snapshot.
func (t *Tracker) advance(snap domain.Snapshot) domain.ShoeState {
	if exact, ok := t.adoptRankCounts(t.state, snap); ok {
		return exact
	}
	return t.depleteUniform(t.state, snap.CardsRemaining)
}

// adoptRankCounts adopta los conteos por rango del feed si están presentes y
// son consistentes con el agregado. Con conteos inconsistentes registra el
// problema y deja que el caller caiga al modo aproximado.
func (t *Tracker) adoptRankCounts(base domain.ShoeState, snap domain.Snapshot) (domain.ShoeState, bool) {
	if snap.RankCounts == nil {
		return domain.ShoeState{}, false
	}
	s := base
	sum := 0
	maxPerRank := domain.CardsPerRank * t.decks
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		c := snap.RankCounts[r]
		if c < 0 || c > maxPerRank {
			slog.Warn("feed rank count outside shoe composition",
				"rank", int(r), "count", c, "max", maxPerRank)
			return domain.ShoeState{}, false
		}
		s.Counts[r] = c
		sum += c
	}
	if sum != snap.CardsRemaining {
		slog.Warn("feed rank counts disagree with aggregate",
			"sum", sum, "cards_remaining", snap.CardsRemaining)
		return domain.ShoeState{}, false
	}
	s.CardsDealt = s.TotalCards - sum
	s.Mode = domain.ModeExact
	return s, true
}

// depleteUniform reparte el delta de cartas proporcionalmente entre los
// rangos restantes (método del mayor residuo para que los enteros cuadren) y
// marca el estado como aproximado.
func (t *Tracker) depleteUniform(base domain.ShoeState, remaining int) domain.ShoeState {
	s := base
	s.Mode = domain.ModeApproximate

	cur := s.CardsRemaining()
	delta := cur - remaining
	if delta <= 0 || cur <= 0 {
		return s
	}
	if delta > cur {
		delta = cur
	}

	type residual struct {
		rank domain.Rank
		frac float64
	}
	removed := 0
	residuals := make([]residual, 0, domain.NumRanks)
	for r := domain.RankAce; r <= domain.RankKing; r++ {
		if s.Counts[r] == 0 {
			continue
		}
		exactShare := float64(delta) * float64(s.Counts[r]) / float64(cur)
		take := int(exactShare)
		if take > s.Counts[r] {
			take = s.Counts[r]
		}
		s.Counts[r] -= take
		removed += take
		residuals = append(residuals, residual{rank: r, frac: exactShare - float64(take)})
	}

	// Residuos: retira una carta extra de los rangos con mayor parte
	// fraccionaria hasta cerrar el delta.
	for removed < delta {
		best := -1
		for i, res := range residuals {
			if s.Counts[res.rank] == 0 {
				continue
			}
			if best == -1 || res.frac > residuals[best].frac {
				best = i
			}
		}
		if best == -1 {
			break
		}
		s.Counts[residuals[best].rank]--
		residuals[best].frac = -1
		removed++
	}

	s.CardsDealt += removed
	return s
}
