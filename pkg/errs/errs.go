// Package errs collects the sentinel errors components wrap with detail at
// the call site and that callers match with errors.Is.
package errs

import "errors"

var (
	ErrDecodeFailed             = errors.New("failed to decode upstream payload")
	ErrRoutingFailed            = errors.New("no writer registered for class")
	ErrConversionFailedRequired = errors.New("required field conversion failed")
	ErrConversionFailedOptional = errors.New("optional field conversion failed")
	ErrMatchFailed              = errors.New("rule matching failed")
	ErrWriteFailed              = errors.New("columnar write failed")
	ErrRotationFailed           = errors.New("writer rotation failed")
	ErrConfigUpdateFailed       = errors.New("config update failed")
	ErrUpstreamClosed           = errors.New("upstream channel closed")
	ErrFatalInit                = errors.New("fatal initialization error")
)
