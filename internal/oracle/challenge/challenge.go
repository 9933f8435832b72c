// Package challenge decides whether a human-verification token was solved.
// The challenge provider itself is opaque; only its yes/no answer matters.
package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"proofgate/pkg/platform/circuit"
)

var (
	// ErrChallengeRejected: the provider says the token was not solved, or
	// it was already used.
	ErrChallengeRejected = errors.New("challenge rejected")
	// ErrChallengeUnavailable: the provider could not be asked.
	ErrChallengeUnavailable = errors.New("challenge provider unavailable")
)

// Verifier checks a client's challenge token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Static accepts every non-empty token unless Reject is set. For development
// and tests only.
type Static struct {
	Reject bool
}

func (s Static) Verify(_ context.Context, token, _ string) error {
	if s.Reject || strings.TrimSpace(token) == "" {
		return ErrChallengeRejected
	}
	return nil
}

// DefaultVerifyURL is Cloudflare Turnstile's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// maxResponseBytes bounds the provider's reply.
const maxResponseBytes = 16 << 10

// SiteVerifyClient talks to a Turnstile/reCAPTCHA-compatible siteverify
// endpoint: form POST of secret, response and remoteip, JSON reply with a
// success flag.
type SiteVerifyClient struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

// Option configures a SiteVerifyClient.
type Option func(*SiteVerifyClient)

// WithVerifyURL overrides the siteverify endpoint.
func WithVerifyURL(u string) Option {
	return func(c *SiteVerifyClient) {
		if u != "" {
			c.verifyURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *SiteVerifyClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker fails fast with ErrChallengeUnavailable while the provider is
// known to be down.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *SiteVerifyClient) {
		c.breaker = b
	}
}

// NewSiteVerifyClient builds a client for the given site secret.
func NewSiteVerifyClient(secret string, opts ...Option) (*SiteVerifyClient, error) {
	if secret == "" {
		return nil, errors.New("challenge secret is required")
	}
	c := &SiteVerifyClient{
		secret:     secret,
		verifyURL:  DefaultVerifyURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (c *SiteVerifyClient) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrChallengeRejected
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return fmt.Errorf("%w: circuit %s open", ErrChallengeUnavailable, c.breaker.Name())
	}

	err := c.siteVerify(ctx, token, remoteIP)
	if c.breaker != nil {
		if errors.Is(err, ErrChallengeUnavailable) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

func (c *SiteVerifyClient) siteVerify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify returned %d", ErrChallengeUnavailable, resp.StatusCode)
	}
	var body siteVerifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode siteverify response: %v", ErrChallengeUnavailable, err)
	}
	if !body.Success {
		return fmt.Errorf("%w: %s", ErrChallengeRejected, strings.Join(body.ErrorCodes, ","))
	}
	return nil
}
