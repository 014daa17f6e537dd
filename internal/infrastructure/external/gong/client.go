package gong

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/sderosiaux/gong-to-github/errors"
	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
	"github.com/sderosiaux/gong-to-github/pkg/config"
)

const (
	defaultBaseURL           = "https://api.gong.io"
	apiVersionPath           = "/v2"
	defaultRequestsPerSecond = 3
	defaultRequestTimeout    = 30 * time.Second

	// Gong caps extensive/transcript requests at 100 call ids.
	maxIDsPerRequest = 100
	// The pipeline flushes detail fetches every 50 listed calls.
	pipelineBatchSize = 50

	retryInitialInterval = 4 * time.Second
	retryMaxInterval     = 60 * time.Second
	retryMaxAttempts     = 5
)

// DefaultScope is the call scope synced when no explicit scope is requested.
const DefaultScope = "External"

// RateLimitError is returned when the API responds with HTTP 429
type RateLimitError struct {
	RetryAfter int // seconds, from the Retry-After header
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}

// APIError is returned for any non-429 response with status >= 400
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Client is a Gong API client with rate limiting and cursor pagination.
// A Client is not safe for concurrent use; the sync pipeline is
// single-threaded by design.
type Client struct {
	accessKey  string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	// user directory cache, populated once per process lifetime
	users      []entities.User
	usersByID  map[string]entities.User
	usersReady bool

	retryInitial time.Duration
	retryMax     time.Duration
	retryTries   uint64
}

// NewClient creates a Gong client using the provided config.
func NewClient(cfg *config.GongConfig, logger *zap.Logger) *Client {
	baseURL := defaultBaseURL
	rps := float64(defaultRequestsPerSecond)
	timeout := defaultRequestTimeout
	var accessKey, secretKey string

	if cfg != nil {
		accessKey = cfg.AccessKey
		secretKey = cfg.SecretKey
		if cfg.BaseURL != "" {
			baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.RequestsPerSecond > 0 {
			rps = cfg.RequestsPerSecond
		}
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		accessKey:    accessKey,
		secretKey:    secretKey,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		logger:       logger,
		usersByID:    make(map[string]entities.User),
		retryInitial: retryInitialInterval,
		retryMax:     retryMaxInterval,
		retryTries:   retryMaxAttempts,
	}
}

// request executes a single API call, retrying rate-limited attempts with
// exponential backoff. Any other failure is returned immediately.
func (c *Client) request(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxInterval = c.retryMax
	bo.MaxElapsedTime = 0

	attempt := func() error {
		err := c.doRequest(ctx, method, endpoint, query, body, out)
		if err == nil {
			return nil
		}
		var rateErr *RateLimitError
		if errors.As(err, &rateErr) {
			c.logger.Warn("rate limited by Gong API",
				zap.String("endpoint", endpoint),
				zap.Int("retry_after", rateErr.RetryAfter),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(attempt, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), c.retryTries-1))
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.ErrRateLimited(rateErr, rateErr.RetryAfter)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	// Throttle before every outgoing request, process-wide per client.
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + apiVersionPath + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accessKey, c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60
		if v := resp.Header.Get("Retry-After"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				retryAfter = n
			}
		}
		io.Copy(io.Discard, resp.Body)
		return &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// formatDateTime renders a timestamp for the Gong API. Gong requires
// timezone-qualified timestamps; UTC times carry the explicit "Z" suffix.
func formatDateTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
