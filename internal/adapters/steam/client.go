package steam

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://steamcommunity.com"

	// Las páginas de community están muy limitadas: un 429 tarda varios
	// minutos en levantarse, así que mejor no provocarlo.
	communityRatePerSec = 2

	maxAttempts         = 10
	baseRetryWait       = time.Second
	tooManyRequestsWait = 30 * time.Second

	// Steam compara el sessionid del body con el de la cookie; basta con que
	// coincidan.
	dummySessionID = "000000000000000000000000"
)

// Config son los parámetros de conexión del client.
type Config struct {
	BaseURL     string // vacío usa producción
	LoginSecure string // cookie steamLoginSecure
	SteamID     string
	Language    string
	AppID       int    // juego cuyo inventario se vende
	ContextID   string // categoría de inventario dentro del juego
}

// Client es el HTTP client de steamcommunity con rate limiting y retries.
// Implementa los ports de inventario, datos de mercado, wallet y listing.
type Client struct {
	http        *http.Client
	base        string
	loginSecure string
	steamID     string
	language    string
	appID       int
	contextID   string

	// currency se fija tras cargar los parámetros del wallet, antes de
	// procesar ningún item; después es de solo lectura.
	currency int

	limiter *rate.Limiter
}

// NewClient crea un Client a partir de la config dada.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		http:        &http.Client{Timeout: 10 * time.Second},
		base:        strings.TrimRight(base, "/"),
		loginSecure: cfg.LoginSecure,
		steamID:     cfg.SteamID,
		language:    cfg.Language,
		appID:       cfg.AppID,
		contextID:   cfg.ContextID,
		currency:    1,
		limiter:     rate.NewLimiter(communityRatePerSec, 4),
	}
}

// SetCurrency fija la divisa del wallet usada en las consultas de book.
func (c *Client) SetCurrency(currency int) {
	if currency > 0 {
		c.currency = currency
	}
}

// get hace un GET con rate limiting y retries y devuelve el body y el status.
// withAuth añade la cookie steamLoginSecure.
func (c *Client) get(ctx context.Context, path string, params url.Values, withAuth bool) ([]byte, int, error) {
	return c.doWithRetry(ctx, func() (*http.Request, error) {
		u := c.base + path
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if withAuth {
			req.AddCookie(&http.Cookie{Name: "steamLoginSecure", Value: c.loginSecure})
		}
		return req, nil
	})
}

// postForm hace un POST de formulario con las cookies de sesión que exige el
// endpoint de venta.
func (c *Client) postForm(ctx context.Context, path, referer string, form url.Values) ([]byte, int, error) {
	return c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", referer)
		req.AddCookie(&http.Cookie{Name: "steamLoginSecure", Value: c.loginSecure})
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: dummySessionID})
		req.AddCookie(&http.Cookie{Name: "Steam_Language", Value: c.language})
		return req, nil
	})
}

// doWithRetry ejecuta la request hasta maxAttempts veces. Errores de red
// esperan un backoff corto con jitter; un 429 espera el hueco largo que
// steam necesita para levantar el límite. Cualquier otro status se devuelve
// al caller, que decide qué significa para su endpoint.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error)) ([]byte, int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("steam: rate limiter: %w", err)
		}

		req, err := build()
		if err != nil {
			return nil, 0, fmt.Errorf("steam: build request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if waitErr := sleepCtx(ctx, retryWait(attempt)); waitErr != nil {
				return nil, 0, waitErr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if waitErr := sleepCtx(ctx, retryWait(attempt)); waitErr != nil {
				return nil, 0, waitErr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("too many requests")
			if waitErr := sleepCtx(ctx, tooManyRequestsWait); waitErr != nil {
				return nil, 0, waitErr
			}
			continue
		}

		return body, resp.StatusCode, nil
	}
	return nil, 0, fmt.Errorf("steam: request failed after %d attempts: %w", maxAttempts, lastErr)
}

// retryWait devuelve el backoff con jitter para el intento dado.
func retryWait(attempt int) time.Duration {
	wait := baseRetryWait * time.Duration(attempt)
	jitter := time.Duration(rand.Int63n(int64(wait) / 2))
	return wait + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
