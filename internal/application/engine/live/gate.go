package live

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"os"
)

// Gate decide si el engine puede enviar órdenes reales. Colocar en live
// exige tres cosas a la vez: simulate apagado, live_enabled en la
// config, y un token de operador en el entorno cuyo SHA-256 coincida
// con el hash configurado. Así un despliegue accidental con la config
// de producción sigue sin apostar hasta que un operador inyecta el
// token a mano.
type Gate struct {
	simulate    bool
	liveEnabled bool
	tokenEnv    string
	tokenHash   string
}

// NewGate crea el gate. tokenEnv vacío usa BOT_OPERATOR_TOKEN.
func NewGate(simulate, liveEnabled bool, tokenEnv, tokenHash string) *Gate {
	if tokenEnv == "" {
		tokenEnv = "BOT_OPERATOR_TOKEN"
	}
	return &Gate{
		simulate:    simulate,
		liveEnabled: liveEnabled,
		tokenEnv:    tokenEnv,
		tokenHash:   tokenHash,
	}
}

// OperatorEnabled verifica el token de operador contra el hash.
func (g *Gate) OperatorEnabled() bool {
	if g.tokenHash == "" {
		return false
	}
	token := os.Getenv(g.tokenEnv)
	if token == "" {
		return false
	}
	sum := sha256.Sum256([]byte(token))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(g.tokenHash)) == 1
}

// LiveAllowed indica si se permite colocar apuestas reales.
func (g *Gate) LiveAllowed() bool {
	if g.simulate || !g.liveEnabled {
		return false
	}
	return g.OperatorEnabled()
}
