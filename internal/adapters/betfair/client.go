package betfair

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/SteveEddy1974/gamble-bot/internal/domain"
)

const (
	defaultBaseURL = "https://api.games.betfair.com/rest/v1"

	// El Games API tolera ~1 request/s por agente; nos quedamos debajo.
	requestsPerSec = 1

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Credentials son las credenciales del Games API. La contraseña viaja
// como digest MD5 en las cabeceras gamexAPI*, nunca en claro.
type Credentials struct {
	Username string
	Password string
}

// Client es el cliente HTTP del Betfair Games API con rate limiting y
// retries. Implementa ports.SnapshotProvider y ports.BetExecutor.
type Client struct {
	http     *http.Client
	baseURL  string
	limiter  *rate.Limiter
	agent    string
	passMD5  string
	currency string
}

// NewClient crea un Client contra el base URL dado.
// Si baseURL está vacío, usa el URL de producción.
func NewClient(baseURL string, creds Credentials, currency string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sum := md5.Sum([]byte(creds.Password))
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		limiter:  rate.NewLimiter(requestsPerSec, 2),
		agent:    creds.Username,
		passMD5:  hex.EncodeToString(sum[:]),
		currency: currency,
	}
}

// FetchSnapshot devuelve el snapshot actual del canal con las
// selecciones de side bets.
func (c *Client) FetchSnapshot(ctx context.Context, channelID string) (domain.Snapshot, error) {
	url := fmt.Sprintf("%s/channels/%s/snapshot?selectionsType=SideBets", c.baseURL, channelID)

	var cs channelSnapshot
	if err := c.get(ctx, url, &cs); err != nil {
		return domain.Snapshot{}, fmt.Errorf("betfair.FetchSnapshot: %w", err)
	}
	// Entre ronda y ronda el canal publica un snapshot vacío, sin round ni
	// selecciones. No es un error del feed: el ciclo espera al siguiente poll.
	if cs.Round == "" && len(cs.Selections) == 0 && len(cs.Settlements) == 0 {
		return domain.Snapshot{}, fmt.Errorf("betfair.FetchSnapshot: %w: channel %s", domain.ErrNoData, channelID)
	}
	return toSnapshot(channelID, cs, time.Now()), nil
}

// PlaceBet envía un postBetOrder y devuelve la apuesta aceptada.
func (c *Client) PlaceBet(ctx context.Context, req domain.BetRequest) (domain.PlacedBet, error) {
	order := postBetOrder{
		Xmlns:    "urn:betfair:games:api:v1",
		MarketID: req.MarketID,
		Round:    req.RoundID,
		Currency: c.currency,
		Request: totalSizeRequest{
			BidType:     string(req.Side),
			Price:       req.Price,
			TotalSize:   req.Stake,
			SelectionID: req.SelectionID,
		},
	}

	var resp postBetOrderResponse
	if err := c.post(ctx, c.baseURL+"/bet/order", order, &resp); err != nil {
		return domain.PlacedBet{}, fmt.Errorf("betfair.PlaceBet: %w", err)
	}
	if resp.Status != "ACCEPTED" {
		return domain.PlacedBet{}, fmt.Errorf("betfair.PlaceBet: order rejected with status %q", resp.Status)
	}

	return domain.PlacedBet{
		BetID:       resp.BetID,
		SelectionID: req.SelectionID,
		BetName:     req.BetName,
		Side:        req.Side,
		Stake:       req.Stake,
		Price:       req.Price,
		Status:      domain.BetPending,
		PlacedAt:    time.Now(),
	}, nil
}

// AccountFunds devuelve balance disponible y exposición según el venue.
func (c *Client) AccountFunds(ctx context.Context) (domain.BankrollState, error) {
	var acct accountSnapshot
	if err := c.get(ctx, c.baseURL+"/account/snapshot", &acct); err != nil {
		return domain.BankrollState{}, fmt.Errorf("betfair.AccountFunds: %w", err)
	}
	return domain.BankrollState{
		Balance:         acct.AvailableBalance,
		CurrentExposure: acct.Exposure,
	}, nil
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setAuthHeaders(req)
		req.Header.Set("Accept", "application/xml")
		return c.http.Do(req)
	}, out)
}

// post hace un POST XML con rate limiting y retries.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		b, err := xml.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		c.setAuthHeaders(req)
		req.Header.Set("Content-Type", "application/xml")
		req.Header.Set("Accept", "application/xml")
		return c.http.Do(req)
	}, out)
}

// setAuthHeaders aplica el esquema de auth del Games API: el digest MD5
// de la contraseña en gamexAPIPassword y gamexAPIAgentInstance.
func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("gamexAPIPassword", c.passMD5)
	req.Header.Set("gamexAPIAgent", c.agent)
	req.Header.Set("gamexAPIAgentInstance", c.passMD5)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
