package betfair

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

func TestClient_FetchSnapshot_ParsesChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/1444074/snapshot", r.URL.Path)
		assert.Equal(t, "SideBets", r.URL.Query().Get("selectionsType"))
		assert.NotEmpty(t, r.Header.Get("gamexAPIPassword"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(snapshotFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{Username: "user", Password: "pass"}, "GBP")
	snap, err := c.FetchSnapshot(context.Background(), "1444074")
	require.NoError(t, err)
	assert.Equal(t, "mkt-77", snap.MarketID)
	assert.NotEmpty(t, snap.Selections)
}

func TestClient_FetchSnapshot_EmptyRoundIsNoData(t *testing.T) {
	// Entre rondas el canal responde 200 con un snapshot sin round ni
	// selecciones.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<channelSnapshot xmlns="urn:betfair:games:api:v1"></channelSnapshot>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{Username: "user", Password: "pass"}, "GBP")
	_, err := c.FetchSnapshot(context.Background(), "1444074")
	assert.ErrorIs(t, err, domain.ErrNoData)
}
