// Package errs defines the fault classes a check can end with.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrDataAccess    = errors.New("data access error")
	ErrPersistence   = errors.New("persistence error")
)

var (
	ErrMalformedRange     = fmt.Errorf("%w: improper warning/critical format", ErrConfiguration)
	ErrUnknownMode        = fmt.Errorf("%w: unknown mode", ErrConfiguration)
	ErrConflictingOptions = fmt.Errorf("%w: conflicting options", ErrConfiguration)
	ErrMissingData        = fmt.Errorf("%w: query returned no data", ErrDataAccess)
)
