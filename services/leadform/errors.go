package leadform

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("field validation failed")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrAlreadySubmitted   = errors.New("form already submitted")
	ErrTimeout            = errors.New("intake endpoint timed out")
)

// ValidationError reports why the active field blocked advancement.
type ValidationError struct {
	Field Field
	Key   string // translation key of the message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Key)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DeliveryError is returned when the primary intake endpoint did not accept
// the lead.
type DeliveryError struct {
	Endpoint   string
	StatusCode int    // 0 when no response was received
	Detail     string // response body or status text
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Webhook error (%d): %s", e.StatusCode, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("webhook request failed: %v", e.Err)
	}
	return "webhook request failed"
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// HasDetail reports whether the endpoint gave a reason worth showing.
func (e *DeliveryError) HasDetail() bool {
	return e.StatusCode != 0
}
