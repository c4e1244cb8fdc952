// Package payment creates checkout sessions with the external payment
// provider. The provider is consumed through a narrow contract: one
// call that turns a booking into a hosted-checkout redirect URL plus
// an opaque session reference. Payment confirmation flows back
// through the webhook and queue consumer, never through this client.
package payment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Session is a created checkout session. Ref is stored on the booking
// so the provider's confirmation can be correlated back to it.
type Session struct {
	Ref string
	URL string
}

// Client talks to the hosted checkout API. When APIURL is empty the
// client runs in dev mode: it fabricates a session reference locally
// and builds the redirect from PublicURL, so the rest of the flow
// (webhook confirmation included) can be exercised without a provider
// account.
type Client struct {
	APIURL     string
	APIKey     string
	PublicURL  string
	HTTPClient *http.Client
}

type sessionRequest struct {
	Reference   string `json:"reference"`
	AmountCents uint32 `json:"amount_cents"`
	Description string `json:"description"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession opens a checkout session for a booking. reference is
// the booking id rendered for the provider; description is shown on
// the hosted page.
func (c *Client) CreateSession(ctx context.Context, reference string, amountCents uint32, description string) (*Session, error) {
	if c.APIURL == "" {
		return c.localSession()
	}
	body, err := json.Marshal(sessionRequest{
		Reference:   reference,
		AmountCents: amountCents,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.APIURL, "/")+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: create session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("payment: provider status %d", resp.StatusCode)
	}
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("payment: decode session response: %w", err)
	}
	if sr.ID == "" || sr.URL == "" {
		return nil, fmt.Errorf("payment: incomplete session response")
	}
	return &Session{Ref: sr.ID, URL: sr.URL}, nil
}

func (c *Client) localSession() (*Session, error) {
	ref, err := randomToken(16)
	if err != nil {
		return nil, err
	}
	ref = "qs_" + ref
	base := strings.TrimRight(c.PublicURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return &Session{Ref: ref, URL: base + "/pay/" + ref}, nil
}

// randomToken generates a random hexadecimal string of n bytes (2n
// characters), used for dev-mode session references.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
