// Package geo loads the country polygon reference data and joins per-country
// booking aggregates onto it.
package geo

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"hotel_bookings/internal/adapters/observability"
	"hotel_bookings/internal/domain"
)

const maxDocument = 64 << 20

var ErrRemote = errors.New("geo: remote error")

// NewSource returns an HTTP client for http(s) URLs and a file reader for
// anything else.
func NewSource(source string, rps int) (domain.GeoSource, error) {
	if source == "" {
		return nil, fmt.Errorf("geo source is required")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return New(source, rps), nil
	}
	return FileSource{Path: source}, nil
}

type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read geo file: %w", err)
	}
	return b, nil
}

// Client downloads the reference document with client-side rate limiting,
// retries on 429/5xx and a circuit breaker over whole fetches.
type Client struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
	cb  *gobreaker.CircuitBreaker[[]byte]
}

func New(url string, rps int) *Client {
	if rps <= 0 {
		rps = 2
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "geo",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
		cb:  cb,
	}
}

func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) { return c.get(ctx) })
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/geo+json, application/json")
		req.Header.Set("User-Agent", "hotel-bookings/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("geo", "document", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("geo", "document", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocument))
			resp.Body.Close()
			return b, err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter reads Retry-After in seconds or HTTP-date form; 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + time.Duration(0.5*float64(b[0])/255.0*float64(base))
}
