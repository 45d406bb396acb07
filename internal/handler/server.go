// Package handler implements the HTTP handlers for the smart bin API.
// All handlers are methods on Server. Methods are split into files by
// concern (health.go, collection.go) but share the same Server struct so
// they can access its dependencies.
//
// The wire vocabulary is Portuguese — the dashboard and the device firmware
// already speak it — while identifiers and comments stay in English.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/dpontes/smartbin/backend/internal/domain"
)

// CollectionServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type CollectionServicer interface {
	Ingest(ctx context.Context, rawTipo, rawData, rawHorario string) (domain.Collection, error)
	IngestDetection(ctx context.Context, code int) (domain.Collection, error)
	List(ctx context.Context) ([]domain.Collection, error)
	ListByMaterial(ctx context.Context, rawTipo string) ([]domain.Collection, error)
	ListByDate(ctx context.Context, rawData string) ([]domain.Collection, error)
	CountsByMaterial(ctx context.Context, rawFilter string) ([]domain.MaterialCount, error)
	TodayTotal(ctx context.Context) (int, error)
	MostRecent(ctx context.Context, n int) ([]domain.Collection, error)
	Latest(ctx context.Context) (domain.Collection, error)
	Update(ctx context.Context, id int64, patch domain.CollectionPatch) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	collections CollectionServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(collections CollectionServicer) *Server {
	return &Server{collections: collections}
}

// Routes registers every API route on r. Static segments are registered
// before the {tipo} wildcard so "today" and "data" are never read as a
// material filter.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Post("/api/inserir-coleta", s.InsertCollection)
	r.Post("/api/inserir-coleta-ia", s.InsertDetection)

	r.Get("/api/coletas", s.ListCollections)
	r.Get("/api/coletas/today/count", s.CountToday)
	r.Get("/api/coletas/data/{data}", s.ListCollectionsByDate)
	r.Get("/api/coletas/{tipo}", s.ListCollectionsByMaterial)

	r.Get("/api/estatisticas", s.GetStatistics)
	r.Get("/api/ultima-coleta", s.GetLatestCollection)

	r.Put("/api/coleta/{id}", s.UpdateCollection)
	r.Delete("/api/coleta/{id}", s.DeleteCollection)
}
