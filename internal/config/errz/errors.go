// Package errz provides shared error definitions for the config package and the packages
// that consume configuration.
package errz

import "errors"

// Top-level error categories
var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrUnsupportedFormat      = errors.New("unsupported config format")
)

// Validation specific errors
var (
	ErrInvalidType          = errors.New("invalid type")
	ErrInvalidValue         = errors.New("invalid value")
	ErrInvalidMethod        = errors.New("invalid method")
	ErrInvalidRedirectMode  = errors.New("invalid redirect mode")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrEmptyID              = errors.New("empty ID")
	ErrNoActiveLanguage     = errors.New("no active language")
)

// Reference specific errors
var (
	ErrDatabaseNotFound      = errors.New("database not found")
	ErrDefaultDatabaseNotSet = errors.New("default database not set")
	ErrUnknownController     = errors.New("unknown controller")
	ErrUnknownModule         = errors.New("unknown module")
	ErrUnknownRoutable       = errors.New("unknown routable")
	ErrUnknownMiddleware     = errors.New("unknown middleware")
	ErrUnknownEngine         = errors.New("unknown template engine")
	ErrUnknownDriver         = errors.New("unknown driver")
)
