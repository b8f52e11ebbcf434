package domain

import "fmt"

// edge.go — cálculo de valor esperado sobre precios decimales.
//
// Convención de odds decimales: la ganancia de una apuesta BACK ganadora es
// (price - 1) unidades por unidad de stake; la pérdida si falla es 1 unidad.
// El edge se expresa ya normalizado por unidad de stake, así que coincide
// con el valor esperado.

// EvaluateEdge calcula el valor esperado por unidad de stake de una apuesta
// BACK con probabilidad real trueProb a precio decimal price, descontando la
// comisión del exchange sobre las ganancias:
//
//	ev = trueProb × (price-1) × (1-commission) - (1-trueProb)
//
// Devuelve ErrInvalidInput si trueProb está fuera de [0,1], price <= 1.0 o
// commission fuera de [0,1). Son bugs del caller, no condiciones de mercado.
func EvaluateEdge(trueProb, price, commission float64) (float64, error) {
	if trueProb < 0 || trueProb > 1 {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", ErrInvalidInput, trueProb)
	}
	if price <= 1.0 {
		return 0, fmt.Errorf("%w: decimal price %v must exceed 1.0", ErrInvalidInput, price)
	}
	if commission < 0 || commission >= 1 {
		return 0, fmt.Errorf("%w: commission %v outside [0,1)", ErrInvalidInput, commission)
	}
	return trueProb*(price-1)*(1-commission) - (1 - trueProb), nil
}

// BreakEvenProb devuelve la probabilidad de equilibrio de un precio decimal
// sin comisión: con trueProb por encima de 1/price el EV es positivo.
func BreakEvenProb(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return 1.0 / price
}

// LayEquivalent convierte un precio de LAY en el precio BACK equivalente del
// complemento: layar a price equivale a respaldar el evento contrario a
// price/(price-1). Permite evaluar y dimensionar quotes LAY con las mismas
// fórmulas BACK, con probabilidad 1-trueProb.
func LayEquivalent(price float64) float64 {
	if price <= 1.0 {
		return 0
	}
	return price / (price - 1.0)
}
