package domain

import "time"

// Opportunity es el resultado de evaluar una quote contra el modelo de
// probabilidad: apuesta con edge positivo y stake ya acotado por el riesgo
// configurado. Se crea fresca en cada ciclo y no se muta después.
type Opportunity struct {
	SelectionID string
	BetName     string
	Side        Side

	TrueProb float64 // probabilidad calculada, en [0,1]
	Price    float64 // precio decimal cotizado
	Edge     float64 // valor esperado por unidad de stake, > 0 para ser accionable

	RecommendedStake    float64
	BalanceAtEvaluation float64

	// ShoeMode indica con qué precisión de conteo se calculó TrueProb.
	ShoeMode    CountMode
	ShoeID      int
	EvaluatedAt time.Time
}

// ImpliedProb devuelve la probabilidad implícita en el precio cotizado.
func (o Opportunity) ImpliedProb() float64 {
	if o.Price <= 0 {
		return 0
	}
	return 1.0 / o.Price
}

// PotentialProfit devuelve la ganancia bruta si la apuesta resulta ganadora.
func (o Opportunity) PotentialProfit() float64 {
	return o.RecommendedStake * (o.Price - 1.0)
}

// Actionable devuelve true si la oportunidad amerita una orden: edge positivo
// y stake distinto de cero tras todos los clamps.
func (o Opportunity) Actionable() bool {
	return o.Edge > 0 && o.RecommendedStake > 0
}
