package domain

import (
	"fmt"
	"math"
	"sort"
)

// staking.go — fractional Kelly con clamps de exposición y tramos por balance.

// Estrategias de sizing soportadas.
const (
	SizingKelly        = "kelly"
	SizingProportional = "proportional"
)

// proportionalFullEdge es el edge al que la estrategia proporcional apuesta
// el cap completo del tramo; por debajo escala linealmente.
const proportionalFullEdge = 0.10

// BalanceTier es un tramo (threshold, cap): con balance >= Threshold aplica
// el cap de stake Cap (fracción del balance).
type BalanceTier struct {
	Threshold float64 `yaml:"threshold"`
	Cap       float64 `yaml:"cap"`
}

// TierTable es la tabla ordenada de tramos balance → max_stake_pct.
// Se evalúa por búsqueda binaria sobre los thresholds ascendentes.
type TierTable []BalanceTier

// Validate comprueba que la tabla exista, arranque en threshold 0, esté
// ordenada estrictamente y tenga caps en (0,1].
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty balance tier table", ErrConfiguration)
	}
	if t[0].Threshold != 0 {
		return fmt.Errorf("%w: first tier threshold must be 0, got %v", ErrConfiguration, t[0].Threshold)
	}
	for i, tier := range t {
		if tier.Cap <= 0 || tier.Cap > 1 {
			return fmt.Errorf("%w: tier %d cap %v outside (0,1]", ErrConfiguration, i, tier.Cap)
		}
		if i > 0 && tier.Threshold <= t[i-1].Threshold {
			return fmt.Errorf("%w: tier thresholds not strictly ascending at index %d", ErrConfiguration, i)
		}
	}
	return nil
}

// CapFor devuelve el max_stake_pct del tramo que corresponde al balance dado:
// el tramo con el mayor threshold <= balance.
func (t TierTable) CapFor(balance float64) float64 {
	if len(t) == 0 {
		return 0
	}
	// Primer índice cuyo threshold supera el balance; el tramo es el anterior.
	i := sort.Search(len(t), func(i int) bool { return t[i].Threshold > balance })
	if i == 0 {
		return t[0].Cap
	}
	return t[i-1].Cap
}

// StakingConfig son los límites de riesgo del sizing. Valores, no mecanismo:
// vienen de la configuración del caller, ya validados al arrancar.
type StakingConfig struct {
	// KellyShrink es el factor fraccional k en [0,1]: 0.25 = quarter-Kelly.
	KellyShrink float64
	// Tiers mapea balance → cap de stake como fracción del balance.
	Tiers TierTable
	// MaxExposurePct limita exposure + stake a esta fracción del balance.
	MaxExposurePct float64
	// MinBetIncrement: los stakes se redondean hacia abajo a múltiplos de
	// este valor; por debajo de un incremento la apuesta se descarta.
	MinBetIncrement float64
	// MaxBetAbsolute acota el stake en unidades absolutas (0 = sin tope).
	MaxBetAbsolute float64
	// Sizing selecciona la estrategia: kelly (default) o proportional.
	Sizing string
}

// Validate comprueba los rangos de todos los límites.
func (c StakingConfig) Validate() error {
	if c.KellyShrink < 0 || c.KellyShrink > 1 {
		return fmt.Errorf("%w: kelly_shrink %v outside [0,1]", ErrConfiguration, c.KellyShrink)
	}
	if c.MaxExposurePct <= 0 || c.MaxExposurePct > 1 {
		return fmt.Errorf("%w: max_exposure_pct %v outside (0,1]", ErrConfiguration, c.MaxExposurePct)
	}
	if c.MinBetIncrement < 0 {
		return fmt.Errorf("%w: min_bet_increment %v negative", ErrConfiguration, c.MinBetIncrement)
	}
	if c.MaxBetAbsolute < 0 {
		return fmt.Errorf("%w: max_bet_absolute %v negative", ErrConfiguration, c.MaxBetAbsolute)
	}
	if c.Sizing != "" && c.Sizing != SizingKelly && c.Sizing != SizingProportional {
		return fmt.Errorf("%w: unknown sizing strategy %q", ErrConfiguration, c.Sizing)
	}
	return c.Tiers.Validate()
}

// KellyFraction devuelve la fracción Kelly completa f* = edge / (price-1).
// Para odds decimales es la forma algebraica de (b·p - q)/b con b = price-1.
// Devuelve 0 si no hay edge positivo: el signo del edge manda, aunque el
// redondeo haga discrepar a las dos fórmulas cerca de cero.
func KellyFraction(edge, price float64) float64 {
	b := price - 1.0
	if b <= 0 || edge <= 0 {
		return 0
	}
	return edge / b
}

// SizeStake dimensiona el stake de una apuesta con edge conocido aplicando
// fractional Kelly y todos los límites configurados. Nunca devuelve un valor
// negativo ni por encima de los caps; 0 significa "no apostar".
func SizeStake(edge, trueProb, price float64, bankroll BankrollState, cfg StakingConfig) float64 {
	if bankroll.Balance <= 0 {
		return 0
	}
	cap := cfg.Tiers.CapFor(bankroll.Balance)

	var stake float64
	if cfg.Sizing == SizingProportional {
		stake = proportionalStake(edge, bankroll.Balance, cap)
	} else {
		f := cfg.KellyShrink * KellyFraction(edge, price)
		if f > cap {
			f = cap
		}
		stake = f * bankroll.Balance
	}
	if stake <= 0 {
		return 0
	}

	// Exposición: clamp al headroom restante, nunca por encima del cap global.
	headroom := cfg.MaxExposurePct*bankroll.Balance - bankroll.CurrentExposure
	if headroom <= 0 {
		return 0
	}
	if stake > headroom {
		stake = headroom
	}

	if cfg.MaxBetAbsolute > 0 && stake > cfg.MaxBetAbsolute {
		stake = cfg.MaxBetAbsolute
	}
	if cfg.MinBetIncrement > 0 {
		stake = math.Floor(stake/cfg.MinBetIncrement) * cfg.MinBetIncrement
		if stake < cfg.MinBetIncrement {
			return 0
		}
	}
	return stake
}

// proportionalStake escala el cap del tramo linealmente con el edge,
// saturando en proportionalFullEdge.
func proportionalStake(edge, balance, cap float64) float64 {
	if edge <= 0 {
		return 0
	}
	scale := edge / proportionalFullEdge
	if scale > 1 {
		scale = 1
	}
	return balance * cap * scale
}
