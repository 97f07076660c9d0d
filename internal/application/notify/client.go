package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultBaseURL is the production Notify API.
const DefaultBaseURL = "https://api.notifications.service.gov.uk"

const (
	uuidLen    = 36
	emailPath  = "/v2/notifications/email"
	maxErrBody = 64 << 10
)

// ErrInvalidAPIKey is returned when a key does not end in a service id and a
// secret, both UUIDs.
var ErrInvalidAPIKey = errors.New("notify: malformed API key")

// Client talks to the Notify REST API. Each request carries a short-lived
// HS256 token signed with the key's secret.
type Client struct {
	baseURL    string
	serviceID  string
	secret     []byte
	httpClient *http.Client
	now        func() time.Time
	retries    int
	retryWait  time.Duration
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetries retries rate-limited, 5xx and transport failures up to n times
// with exponential backoff starting at wait.
func WithRetries(n int, wait time.Duration) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if wait > 0 {
			c.retryWait = wait
		}
	}
}

// WithClock sets the clock used for the token's iat claim.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient parses apiKey, which has the form <name>-<service id>-<secret>.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	serviceID, secret, err := parseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		serviceID:  serviceID,
		secret:     []byte(secret),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		retryWait:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseAPIKey(key string) (serviceID, secret string, err error) {
	key = strings.TrimSpace(key)
	if len(key) < 2*uuidLen+1 {
		return "", "", ErrInvalidAPIKey
	}
	secret = key[len(key)-uuidLen:]
	serviceID = key[len(key)-2*uuidLen-1 : len(key)-uuidLen-1]
	if key[len(key)-uuidLen-1] != '-' {
		return "", "", ErrInvalidAPIKey
	}
	return serviceID, secret, nil
}

// SendEmail posts email to Notify. A non-2xx response is returned as *APIError.
// Retryable failures are retried when the client was built WithRetries.
func (c *Client) SendEmail(ctx context.Context, email Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("notify: encode email: %w", err)
	}
	if c.retries == 0 {
		return c.send(ctx, body)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)
	return backoff.Retry(func() error {
		err := c.send(ctx, body)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (c *Client) send(ctx context.Context, body []byte) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	_ = json.Unmarshal(raw, apiErr)
	return apiErr
}

func (c *Client) token() (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   c.serviceID,
		IssuedAt: jwt.NewNumericDate(c.now()),
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("notify: sign token: %w", err)
	}
	return signed, nil
}
