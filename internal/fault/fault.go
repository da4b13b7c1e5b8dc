// Package fault defines the error kinds shared across the analysis core.
//
// ConfigurationError: a parameter is missing, out of range, or names an
// unknown indicator. Raised at construction time, before any computation.
// ValidationError: input series are malformed (mismatched lengths, bad
// signal vocabulary, empty data). Raised before any partial results exist.
// ComputationError: an unexpected numeric failure where NaN propagation is
// not the documented policy.
package fault

import "fmt"

// ConfigurationError reports an invalid or unknown configuration parameter.
type ConfigurationError struct {
	Param  string // parameter or indicator name, e.g. "rsi.period"
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Param, e.Reason)
}

// Configf builds a ConfigurationError for the given parameter.
func Configf(param, format string, args ...any) error {
	return &ConfigurationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed input data.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ComputationError reports an unexpected numeric failure during an operation.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation: %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
