package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
	ErrForbidden        = errors.New("forbidden")

	ErrNotFound             = fmt.Errorf("%w: not found", ErrInvalidReference)
	ErrInterventionNotFound = fmt.Errorf("%w: intervention", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("%w: session", ErrNotFound)
	ErrBaselineNotFound     = fmt.Errorf("%w: baseline", ErrNotFound)
	ErrAnomalyNotFound      = fmt.Errorf("%w: anomaly", ErrNotFound)
	ErrRiskScoreNotFound    = fmt.Errorf("%w: risk score", ErrNotFound)

	ErrInsufficientData    = errors.New("insufficient data")
	ErrCannotDeleteActive  = errors.New("cannot delete active baseline")
	ErrSessionAlreadyEnded = errors.New("session already ended")
)
