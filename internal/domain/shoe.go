package domain

import "fmt"

// Rank identifica el rango de una carta: 1=As, 2..10 según pinta, 11=J, 12=Q, 13=K.
type Rank int

const (
	RankAce  Rank = 1
	RankKing Rank = 13

	// NumRanks es la cantidad de rangos distintos en una baraja estándar.
	NumRanks = 13
	// CardsPerRank son las copias de cada rango por baraja (una por palo).
	CardsPerRank = 4
	// CardsPerDeck son las cartas de una baraja completa.
	CardsPerDeck = NumRanks * CardsPerRank

	// DefaultDecks es la composición estándar del shoe de Baccarat.
	DefaultDecks = 8
)

// CardValue devuelve el valor Baccarat de un rango: As=1, 2..9 su pinta, 10/J/Q/K=0.
func CardValue(r Rank) int {
	switch {
	case r == RankAce:
		return 1
	case r >= 2 && r <= 9:
		return int(r)
	default:
		return 0
	}
}

// CountMode indica la precisión del conteo por rango del shoe.
// El modelo de probabilidad expone este modo en sus resultados: con
// ModeApproximate las probabilidades son una aproximación por agotamiento
// uniforme, no un cálculo exacto.
type CountMode int

const (
	// ModeExact: el feed reporta conteos por rango y el tracker los adopta.
	ModeExact CountMode = iota
	// ModeApproximate: solo hay conteo agregado; agotamiento uniforme.
	ModeApproximate
)

// String implementa fmt.Stringer.
func (m CountMode) String() string {
	if m == ModeApproximate {
		return "approximate"
	}
	return "exact"
}

// ShoeState es el estado inmutable-por-ciclo del shoe: cartas restantes por
// rango más metadatos de generación. Se crea con el primer snapshot, se
// reemplaza en cada observación y por completo en cada reset de shoe.
type ShoeState struct {
	// Counts[r] son las copias restantes del rango r. La posición 0 no se usa.
	Counts     [NumRanks + 1]int `json:"counts" yaml:"counts"`
	CardsDealt int               `json:"cards_dealt" yaml:"cards_dealt"`
	TotalCards int               `json:"total_cards" yaml:"total_cards"`
	// ShoeID incrementa con cada reset detectado.
	ShoeID int       `json:"shoe_id" yaml:"shoe_id"`
	Mode   CountMode `json:"mode" yaml:"mode"`
}

// FreshShoe devuelve la composición completa de un shoe de N barajas sin repartir.
func FreshShoe(decks, shoeID int) ShoeState {
	if decks <= 0 {
		decks = DefaultDecks
	}
	s := ShoeState{
		TotalCards: decks * CardsPerDeck,
		ShoeID:     shoeID,
		Mode:       ModeExact,
	}
	for r := RankAce; r <= RankKing; r++ {
		s.Counts[r] = decks * CardsPerRank
	}
	return s
}

// CardsRemaining devuelve las cartas aún en el shoe.
func (s ShoeState) CardsRemaining() int {
	return s.TotalCards - s.CardsDealt
}

// Count devuelve las copias restantes del rango dado (0 fuera de rango).
func (s ShoeState) Count(r Rank) int {
	if r < RankAce || r > RankKing {
		return 0
	}
	return s.Counts[r]
}

// Validate comprueba la invariante estructural: los conteos por rango deben
// sumar exactamente TotalCards - CardsDealt y no ser negativos.
func (s ShoeState) Validate() error {
	if s.TotalCards <= 0 {
		return fmt.Errorf("%w: total_cards=%d", ErrInvalidInput, s.TotalCards)
	}
	if s.CardsDealt < 0 || s.CardsDealt > s.TotalCards {
		return fmt.Errorf("%w: cards_dealt=%d of %d", ErrInvalidInput, s.CardsDealt, s.TotalCards)
	}
	sum := 0
	for r := RankAce; r <= RankKing; r++ {
		if s.Counts[r] < 0 {
			return fmt.Errorf("%w: negative count for rank %d", ErrInvalidInput, r)
		}
		sum += s.Counts[r]
	}
	if sum != s.CardsRemaining() {
		return fmt.Errorf("%w: rank counts sum %d, want %d remaining", ErrInvalidInput, sum, s.CardsRemaining())
	}
	return nil
}
