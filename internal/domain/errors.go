package domain

import "errors"

// Taxonomía de errores del núcleo. Los adapters y el evaluator distinguen
// con errors.Is qué fallos se recuperan localmente y cuáles son fatales.
var (
	// ErrInvalidInput indica una probabilidad fuera de [0,1] o un precio
	// decimal <= 1.0 llegando al cálculo de edge. Señala un bug upstream.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientCards indica que el shoe no tiene cartas suficientes
	// para el reparto que la apuesta requiere. Se recupera saltando esa
	// apuesta durante el ciclo.
	ErrInsufficientCards = errors.New("insufficient cards in shoe")

	// ErrConfiguration indica un valor de configuración ausente o fuera de
	// rango. Fatal al arrancar, nunca por-ciclo.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoData indica que el feed no tiene snapshot disponible este ciclo.
	// El engine lo distingue de un fallo real y simplemente espera al siguiente.
	ErrNoData = errors.New("no snapshot data available")

	// ErrBetNotFound indica un bet_id que el almacenamiento no conoce.
	ErrBetNotFound = errors.New("bet not found")

	// ErrUnknownSideBet indica una quote para una apuesta que el modelo no soporta.
	ErrUnknownSideBet = errors.New("unknown side bet")
)
