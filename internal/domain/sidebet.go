package domain

// Nombres de las side bets soportadas, tal como aparecen en las quotes del feed.
const (
	BetPocketPair        = "Pocket Pair"
	BetPocketPairAnyHand = "Pocket Pair In Any Hand"
	BetNaturalWin        = "Natural Win"
	BetNaturalTie        = "Natural Tie"
	BetHighestHandNine   = "Highest Hand Nine"
	BetHighestHandOdd    = "Highest Hand Odd"
)

// Deal son las primeras cuatro cartas de una ronda en orden de reparto:
// Player, Banker, Player, Banker. Todas las side bets soportadas se resuelven
// con estas cuatro cartas; las cartas de tercer turno no participan.
type Deal struct {
	P1, B1, P2, B2 Rank
}

// PlayerTotal devuelve el total Baccarat (mod 10) de la mano del Player.
func (d Deal) PlayerTotal() int {
	return (CardValue(d.P1) + CardValue(d.P2)) % 10
}

// BankerTotal devuelve el total Baccarat (mod 10) de la mano del Banker.
func (d Deal) BankerTotal() int {
	return (CardValue(d.B1) + CardValue(d.B2)) % 10
}

// HighestTotal devuelve el mayor de los dos totales iniciales.
func (d Deal) HighestTotal() int {
	p, b := d.PlayerTotal(), d.BankerTotal()
	if b > p {
		return b
	}
	return p
}

func natural(total int) bool { return total == 8 || total == 9 }

// SideBetDefinition define una side bet: nombre, cartas que su reparto
// requiere y el predicado ganador. Inmutable; el catálogo se fija al arrancar.
type SideBetDefinition struct {
	Name          string
	CardsRequired int
	Wins          func(Deal) bool
}

// SideBetCatalog devuelve las side bets soportadas. Los predicados replican
// las reglas de pago del mercado: pares en las dos primeras cartas, naturales
// y propiedades del total inicial más alto.
func SideBetCatalog() []SideBetDefinition {
	return []SideBetDefinition{
		{
			Name:          BetPocketPair,
			CardsRequired: 4,
			Wins:          func(d Deal) bool { return d.P1 == d.P2 },
		},
		{
			Name:          BetPocketPairAnyHand,
			CardsRequired: 4,
			Wins:          func(d Deal) bool { return d.P1 == d.P2 || d.B1 == d.B2 },
		},
		{
			Name:          BetNaturalWin,
			CardsRequired: 4,
			Wins: func(d Deal) bool {
				return natural(d.PlayerTotal()) || natural(d.BankerTotal())
			},
		},
		{
			Name:          BetNaturalTie,
			CardsRequired: 4,
			Wins: func(d Deal) bool {
				p, b := d.PlayerTotal(), d.BankerTotal()
				return natural(p) && p == b
			},
		},
		{
			Name:          BetHighestHandNine,
			CardsRequired: 4,
			Wins:          func(d Deal) bool { return d.HighestTotal() == 9 },
		},
		{
			Name:          BetHighestHandOdd,
			CardsRequired: 4,
			Wins:          func(d Deal) bool { return d.HighestTotal()%2 == 1 },
		},
	}
}
