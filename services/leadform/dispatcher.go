package leadform

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

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds the primary intake request.
const DefaultTimeout = 15 * time.Second

// maxDetailBytes caps how much of an error response body is kept.
const maxDetailBytes = 2048

// Submitter hands a completed Answer Set to the outside world.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// Dispatcher posts a lead to the primary intake endpoint and mirrors it to a
// secondary automation endpoint. Only the primary decides success.
type Dispatcher struct {
	PrimaryURL   string
	SecondaryURL string
	Client       *http.Client
	// Timeout bounds the primary request. The secondary gets the same budget
	// on its own clock.
	Timeout time.Duration

	mirrors errgroup.Group
}

// NewDispatcher creates a dispatcher with the default HTTP client.
func NewDispatcher(primaryURL, secondaryURL string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		PrimaryURL:   primaryURL,
		SecondaryURL: secondaryURL,
		Client:       &http.Client{},
		Timeout:      timeout,
	}
}

// Submit posts to the primary endpoint and returns its result. The secondary
// post runs in the background and outlives ctx; its failure is only logged.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(NewPayload(sub))
	if err != nil {
		return fmt.Errorf("failed to encode lead payload: %w", err)
	}

	if d.SecondaryURL != "" {
		secondaryCtx := context.WithoutCancel(ctx)
		d.mirrors.Go(func() error {
			ctx, cancel := context.WithTimeout(secondaryCtx, d.timeout())
			defer cancel()
			if err := d.post(ctx, d.SecondaryURL, body); err != nil {
				log.Warn().Err(err).Str("endpoint", d.SecondaryURL).Msg("Secondary lead webhook failed")
			}
			return nil
		})
	}

	primaryCtx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()
	return d.post(primaryCtx, d.PrimaryURL, body)
}

// Wait blocks until every background secondary post has finished.
func (d *Dispatcher) Wait() {
	_ = d.mirrors.Wait()
}

func (d *Dispatcher) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Endpoint: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &DeliveryError{Endpoint: url, Err: ErrTimeout}
		}
		return &DeliveryError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return &DeliveryError{Endpoint: url, StatusCode: resp.StatusCode, Detail: detail}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (d *Dispatcher) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}
