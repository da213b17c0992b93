package model

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable    = errors.New("source unavailable")
	ErrSourceFormat         = errors.New("unexpected source format")
	ErrNotificationDelivery = errors.New("notification delivery failed")
)

// DeliveryError keeps the raw provider response for diagnostics.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s responded %d: %s", ErrNotificationDelivery, e.Provider, e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return ErrNotificationDelivery
}
