// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDataUnavailable  = errors.New("historical data unavailable")
	ErrUnknownCondition = errors.New("unknown condition kind")
	ErrFeedClosed       = errors.New("feed closed")
	ErrCacheUnavailable = errors.New("dedup cache unavailable")
	ErrTimeout          = errors.New("operation timed out")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("alert store unavailable")
)

// EvaluatorError represents a failure inside one condition evaluator. The
// dispatcher catches it at the per-alert boundary so sibling alerts keep
// running.
type EvaluatorError struct {
	AlertID string
	Symbol  string
	Kind    string
	Err     error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("evaluator error [%s] %s %s: %v", e.AlertID, e.Kind, e.Symbol, e.Err)
}

func (e *EvaluatorError) Unwrap() error {
	return e.Err
}

// NewEvaluatorError creates a new EvaluatorError.
func NewEvaluatorError(alertID, symbol, kind string, err error) *EvaluatorError {
	return &EvaluatorError{
		AlertID: alertID,
		Symbol:  symbol,
		Kind:    kind,
		Err:     err,
	}
}

// DeliveryError represents a failed notification send.
type DeliveryError struct {
	AlertID    string
	Recipient  string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery error [%s] %s: %v", e.AlertID, e.Recipient, e.Err)
	}
	return fmt.Sprintf("delivery error [%s] %s: status %d", e.AlertID, e.Recipient, e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewDeliveryError creates a new DeliveryError.
func NewDeliveryError(alertID, recipient string, status int, err error) *DeliveryError {
	return &DeliveryError{
		AlertID:    alertID,
		Recipient:  recipient,
		StatusCode: status,
		Err:        err,
	}
}

// DataError represents a historical-data fetch or parse failure.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// SubscriptionError represents a dropped or failed live-feed subscription.
type SubscriptionError struct {
	Symbol string
	Err    error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription error [%s]: %v", e.Symbol, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// NewSubscriptionError creates a new SubscriptionError.
func NewSubscriptionError(symbol string, err error) *SubscriptionError {
	return &SubscriptionError{Symbol: symbol, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
