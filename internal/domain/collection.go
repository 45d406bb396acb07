// Package domain contains the core data types for the smart bin API.
// This package holds no SQL and no HTTP: it is imported by every other
// internal package (repo, service, handler, poller).
package domain

import "time"

// Collection is a single waste-collection event reported by the bin.
// Data and Horario are kept in their canonical textual forms ("2006-01-02"
// and "15:04:05") — the same representation the database columns and the
// JSON API use. Malformed values are rejected at the boundary and never
// reach this struct.
type Collection struct {
	ID        int64     `json:"id"`
	Tipo      Material  `json:"tipo"`
	Data      string    `json:"data"`
	Horario   string    `json:"horario"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectionPatch carries the raw, not-yet-validated fields of a partial
// update. A nil pointer means "leave this field unchanged".
type CollectionPatch struct {
	Tipo    *string
	Data    *string
	Horario *string
}

// Empty reports whether the patch provides no fields at all.
// Services must reject an empty patch before touching the store.
func (p CollectionPatch) Empty() bool {
	return p.Tipo == nil && p.Data == nil && p.Horario == nil
}

// CollectionUpdate is the validated counterpart of CollectionPatch: every
// non-nil field is already canonical and safe to hand to the store.
// Only the service layer should construct one.
type CollectionUpdate struct {
	Tipo    *Material
	Data    *string
	Horario *string
}
