// Package evaluator orquesta el ciclo de evaluación: probabilidad → edge →
// stake por cada quote del snapshot, devolviendo las oportunidades accionables
// ordenadas por edge descendente.
package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

// ProbabilityModel es el subconjunto del modelo que el Evaluator necesita.
type ProbabilityModel interface {
	Probability(betName string, shoe domain.ShoeState) (float64, error)
}

// Config son los umbrales del ciclo de evaluación.
type Config struct {
	// MinEdge excluye oportunidades con edge por debajo de este umbral.
	MinEdge float64
	// Commission es la comisión del exchange sobre ganancias, en [0,1).
	Commission float64
	// Staking son los límites de riesgo del sizing.
	Staking domain.StakingConfig
}

// Validate comprueba los rangos de la configuración.
func (c Config) Validate() error {
	if c.MinEdge < 0 {
		return fmt.Errorf("%w: min_edge %v negative", domain.ErrConfiguration, c.MinEdge)
	}
	if c.Commission < 0 || c.Commission >= 1 {
		return fmt.Errorf("%w: commission %v outside [0,1)", domain.ErrConfiguration, c.Commission)
	}
	return c.Staking.Validate()
}

// Evaluator es computación pura por ciclo: no hace I/O, no muta sus inputs y
// es determinista dado el mismo shoe, quotes y bankroll.
type Evaluator struct {
	model ProbabilityModel
	cfg   Config
}

// New crea un Evaluator con el modelo y la configuración dados.
func New(model ProbabilityModel, cfg Config) *Evaluator {
	return &Evaluator{model: model, cfg: cfg}
}

// EvaluateCycle evalúa todas las quotes de un ciclo contra el shoe y el
// bankroll dados.
//
// Tolerancia a fallos parciales: una quote con cartas insuficientes o una
// side bet desconocida se salta y el resto del ciclo continúa. Un
// ErrInvalidInput (precio degenerado, probabilidad corrupta) aborta el ciclo
// entero: señala un bug de parsing upstream, no una condición de mercado.
//
// Los stakes recomendados antes en el mismo ciclo cuentan como exposición
// para los siguientes, así el conjunto nunca rebasa el cap de exposición.
func (e *Evaluator) EvaluateCycle(
	shoe domain.ShoeState,
	quotes []domain.MarketQuote,
	bankroll domain.BankrollState,
) ([]domain.Opportunity, error) {
	opps := make([]domain.Opportunity, 0, len(quotes))
	exposure := bankroll.CurrentExposure

	for _, quote := range quotes {
		if !quote.InPlay() {
			continue
		}

		cycleBankroll := domain.BankrollState{
			Balance:         bankroll.Balance,
			CurrentExposure: exposure,
		}
		opp, ok, err := e.evaluateQuote(shoe, quote, cycleBankroll)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return nil, fmt.Errorf("evaluator.EvaluateCycle: %s: %w", quote.BetName, err)
			}
			slog.Debug("skipping side bet this cycle",
				"bet", quote.BetName,
				"err", err,
			)
			continue
		}
		if !ok {
			continue
		}

		exposure += opp.RecommendedStake
		opps = append(opps, opp)
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Edge > opps[j].Edge
	})
	return opps, nil
}

// evaluateQuote calcula probabilidad, edge y stake para una quote. Devuelve
// ok=false cuando la quote no supera los umbrales (sin error: es el caso
// normal de un mercado sin valor).
func (e *Evaluator) evaluateQuote(
	shoe domain.ShoeState,
	quote domain.MarketQuote,
	bankroll domain.BankrollState,
) (domain.Opportunity, bool, error) {
	prob, err := e.model.Probability(quote.BetName, shoe)
	if err != nil {
		return domain.Opportunity{}, false, err
	}

	// Una quote LAY se evalúa como BACK del complemento.
	effProb, effPrice := prob, quote.Price
	if quote.Side == domain.SideLay {
		effProb = 1 - prob
		effPrice = domain.LayEquivalent(quote.Price)
	}

	edge, err := domain.EvaluateEdge(effProb, effPrice, e.cfg.Commission)
	if err != nil {
		return domain.Opportunity{}, false, err
	}
	if edge <= e.cfg.MinEdge {
		return domain.Opportunity{}, false, nil
	}

	stake := domain.SizeStake(edge, effProb, effPrice, bankroll, e.cfg.Staking)
	if stake <= 0 {
		return domain.Opportunity{}, false, nil
	}

	return domain.Opportunity{
		SelectionID:         quote.SelectionID,
		BetName:             quote.BetName,
		Side:                quote.Side,
		TrueProb:            prob,
		Price:               quote.Price,
		Edge:                edge,
		RecommendedStake:    stake,
		BalanceAtEvaluation: bankroll.Balance,
		ShoeMode:            shoe.Mode,
		ShoeID:              shoe.ShoeID,
		EvaluatedAt:         time.Now().UTC(),
	}, true, nil
}
