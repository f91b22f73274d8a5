package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	turnstileSiteverifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	// TurnstileTimeout bounds one siteverify round trip.
	TurnstileTimeout = 10 * time.Second
)

// ErrCaptchaMissing is returned when the visitor posted no challenge token.
var ErrCaptchaMissing = errors.New("captcha token missing")

// siteverifyResult is the subset of the siteverify reply the wizard reads.
type siteverifyResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// TurnstileVerifier validates Cloudflare Turnstile tokens posted by the
// contact wizard and the lead API.
type TurnstileVerifier struct {
	Secret   string
	Endpoint string
	// Hostnames, when set, restricts which site may have issued the token.
	Hostnames []string
	Client    *http.Client
}

// NewTurnstileVerifier accepts tokens issued for the host of appURL.
func NewTurnstileVerifier(secret, appURL string) *TurnstileVerifier {
	v := &TurnstileVerifier{
		Secret:   secret,
		Endpoint: turnstileSiteverifyURL,
		Client:   &http.Client{Timeout: TurnstileTimeout},
	}
	if u, err := url.Parse(appURL); err == nil && u.Hostname() != "" && u.Hostname() != "localhost" {
		v.Hostnames = []string{u.Hostname()}
	}
	return v
}

// Verify reports whether token is a fresh challenge solved from ip. Every
// false result carries an error naming the reason.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, ip string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrCaptchaMissing
	}

	form := url.Values{
		"secret":          {v.Secret},
		"response":        {token},
		"idempotency_key": {uuid.NewString()},
	}
	if ip != "" {
		form.Set("remoteip", ip)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned %s", resp.Status)
	}

	var result siteverifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode siteverify reply: %w", err)
	}
	if !result.Success {
		return false, fmt.Errorf("captcha rejected: %s", strings.Join(result.ErrorCodes, ","))
	}
	if len(v.Hostnames) > 0 && !slices.Contains(v.Hostnames, result.Hostname) {
		return false, fmt.Errorf("captcha issued for unexpected host %q", result.Hostname)
	}
	return true, nil
}
