package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("registro não encontrado")

// ErrValidation is the base error for all input validation failures.
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// Specific validation reasons wrap ErrValidation so callers can classify
// broadly with errors.Is(err, ErrValidation) or narrowly with the exact
// sentinel. Validation always happens before any persistence attempt.
var (
	ErrInvalidMaterial = fmt.Errorf("%w: tipo de material inválido", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: data inválida (esperado YYYY-MM-DD)", ErrValidation)
	ErrInvalidTime     = fmt.Errorf("%w: horário inválido (esperado HH:MM:SS)", ErrValidation)
	ErrNoFields        = fmt.Errorf("%w: nenhum campo válido para atualizar", ErrValidation)
)

// ErrNoMaterial means the classifier looked at the bin and saw nothing.
// It is deliberately NOT a validation error: an empty reading is a normal
// outcome for the sensor, it just never becomes a persisted record.
var ErrNoMaterial = errors.New("nenhum material detectado")
