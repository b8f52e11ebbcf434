// Package probability calcula probabilidades exactas de side bets de Baccarat
// por enumeración combinatoria sobre la composición restante del shoe.
package probability

import (
	"fmt"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// Model evalúa la probabilidad de cada side bet soportada dada la composición
// del shoe. Determinista y sin estado mutable: el mismo ShoeState produce
// siempre el mismo resultado.
type Model struct {
	bets map[string]domain.SideBetDefinition
}

// NewModel crea un Model con las definiciones dadas.
func NewModel(defs []domain.SideBetDefinition) *Model {
	m := &Model{bets: make(map[string]domain.SideBetDefinition, len(defs))}
	for _, def := range defs {
		m.bets[def.Name] = def
	}
	return m
}

// Default devuelve un Model con el catálogo completo de side bets.
func Default() *Model {
	return NewModel(domain.SideBetCatalog())
}

// Supports devuelve true si el modelo conoce la side bet dada.
func (m *Model) Supports(betName string) bool {
	_, ok := m.bets[betName]
	return ok
}

// Probability devuelve la probabilidad en [0,1] de que la side bet gane dado
// el shoe actual. Devuelve domain.ErrUnknownSideBet para apuestas fuera del
// catálogo, domain.ErrInvalidInput si el shoe viola su invariante y
// domain.ErrInsufficientCards si quedan menos cartas que el reparto requiere.
func (m *Model) Probability(betName string, shoe domain.ShoeState) (float64, error) {
	def, ok := m.bets[betName]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownSideBet, betName)
	}
	if err := shoe.Validate(); err != nil {
		return 0, fmt.Errorf("probability.Probability: %w", err)
	}
	if shoe.CardsRemaining() < def.CardsRequired {
		return 0, fmt.Errorf("%w: %d remaining, bet %q needs %d",
			domain.ErrInsufficientCards, shoe.CardsRemaining(), betName, def.CardsRequired)
	}
	return enumerateDeals(shoe, def.Wins), nil
}

// enumerateDeals suma la probabilidad de todos los repartos ordenados de
// cuatro cartas (Player, Banker, Player, Banker) cuyo predicado gana.
//
// Cada reparto se pondera como producto de probabilidades condicionales de
// extracción sin reemplazo: count/N × count'/(N-1) × ... Trabajar con ratios
// de conteos evita los binomiales gigantes de la forma hipergeométrica
// cerrada, así que no hay underflow ni cancelación aunque el shoe esté casi
// agotado. Coste fijo: 13⁴ ≈ 28.5k iteraciones, microsegundos por apuesta.
func enumerateDeals(shoe domain.ShoeState, wins func(domain.Deal) bool) float64 {
	n0 := float64(shoe.CardsRemaining())
	total := 0.0

	for r1 := domain.RankAce; r1 <= domain.RankKing; r1++ {
		c1 := shoe.Count(r1)
		if c1 == 0 {
			continue
		}
		p1 := float64(c1) / n0

		for r2 := domain.RankAce; r2 <= domain.RankKing; r2++ {
			c2 := shoe.Count(r2) - drawn(r2, r1)
			if c2 <= 0 {
				continue
			}
			p2 := p1 * float64(c2) / (n0 - 1)

			for r3 := domain.RankAce; r3 <= domain.RankKing; r3++ {
				c3 := shoe.Count(r3) - drawn(r3, r1) - drawn(r3, r2)
				if c3 <= 0 {
					continue
				}
				p3 := p2 * float64(c3) / (n0 - 2)

				for r4 := domain.RankAce; r4 <= domain.RankKing; r4++ {
					c4 := shoe.Count(r4) - drawn(r4, r1) - drawn(r4, r2) - drawn(r4, r3)
					if c4 <= 0 {
						continue
					}
					p4 := p3 * float64(c4) / (n0 - 3)

					if wins(domain.Deal{P1: r1, B1: r2, P2: r3, B2: r4}) {
						total += p4
					}
				}
			}
		}
	}
	return total
}

// drawn devuelve 1 si previous ya consumió una copia del rango r.
func drawn(r, previous domain.Rank) int {
	if r == previous {
		return 1
	}
	return 0
}
