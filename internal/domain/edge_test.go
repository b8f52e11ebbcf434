package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEdge_PositiveEdge(t *testing.T) {
	// p=0.30, price=4.0, sin comisión: 0.30×3 - 0.70 = 0.20
	ev, err := EvaluateEdge(0.30, 4.0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, ev, 1e-12)
}

func TestEvaluateEdge_NegativeEdge(t *testing.T) {
	// p=0.0747, price=5.25: 0.0747×4.25 - 0.9253 ≈ -0.6078
	ev, err := EvaluateEdge(0.0747, 5.25, 0)
	require.NoError(t, err)
	assert.InDelta(t, -0.6078, ev, 0.001)
	assert.Less(t, ev, 0.0)
}

func TestEvaluateEdge_Commission(t *testing.T) {
	// La comisión solo descuenta sobre las ganancias:
	// 0.30×3×0.975 - 0.70 = 0.8775 - 0.70 = 0.1775
	ev, err := EvaluateEdge(0.30, 4.0, 0.025)
	require.NoError(t, err)
	assert.InDelta(t, 0.1775, ev, 1e-12)
}

func TestEvaluateEdge_SignConsistency(t *testing.T) {
	// EV > 0 ⟺ trueProb > 1/price (sin comisión), en ambos lados del break-even.
	prices := []float64{1.5, 2.0, 3.33, 5.25, 11.0}
	for _, price := range prices {
		be := BreakEvenProb(price)

		ev, err := EvaluateEdge(be+0.01, price, 0)
		require.NoError(t, err)
		assert.Greater(t, ev, 0.0, "price %v: above break-even must be +EV", price)

		ev, err = EvaluateEdge(be-0.01, price, 0)
		require.NoError(t, err)
		assert.Less(t, ev, 0.0, "price %v: below break-even must be -EV", price)

		ev, err = EvaluateEdge(be, price, 0)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, ev, 1e-12, "price %v: break-even must be EV 0", price)
	}
}

func TestEvaluateEdge_InvalidProbability(t *testing.T) {
	_, err := EvaluateEdge(-0.1, 2.0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = EvaluateEdge(1.1, 2.0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateEdge_DegeneratePrice(t *testing.T) {
	_, err := EvaluateEdge(0.5, 1.0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = EvaluateEdge(0.5, 0.8, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateEdge_InvalidCommission(t *testing.T) {
	_, err := EvaluateEdge(0.5, 2.0, -0.01)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = EvaluateEdge(0.5, 2.0, 1.0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBreakEvenProb(t *testing.T) {
	assert.InDelta(t, 0.5, BreakEvenProb(2.0), 1e-12)
	assert.InDelta(t, 0.19048, BreakEvenProb(5.25), 1e-4)
	assert.Equal(t, 0.0, BreakEvenProb(0))
}

func TestLayEquivalent(t *testing.T) {
	// Layar a 5.0 equivale a respaldar el complemento a 1.25.
	assert.InDelta(t, 1.25, LayEquivalent(5.0), 1e-12)
	// Layar a 2.0 es simétrico.
	assert.InDelta(t, 2.0, LayEquivalent(2.0), 1e-12)
	// Precio degenerado → 0.
	assert.Equal(t, 0.0, LayEquivalent(1.0))
}

func TestLayEquivalent_EdgeSymmetry(t *testing.T) {
	// El EV de layar p a price es el negativo del EV de respaldar p a price,
	// reescalado a unidad de liability: con p en el break-even ambos son 0.
	price := 4.0
	p := BreakEvenProb(price)
	evBack, err := EvaluateEdge(p, price, 0)
	require.NoError(t, err)
	evLay, err := EvaluateEdge(1-p, LayEquivalent(price), 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, evBack, 1e-12)
	assert.InDelta(t, 0.0, evLay, 1e-12)
}
