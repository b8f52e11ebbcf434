package ports

import "context"

// Alerter envía avisos operativos fuera de banda (webhook, etc.).
// Las implementaciones son best-effort: un fallo de entrega se loguea
// pero nunca detiene el ciclo.
type Alerter interface {
	Alert(ctx context.Context, title, message string) error
}
