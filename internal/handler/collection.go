package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dpontes/smartbin/backend/internal/domain"
)

// insertCollectionRequest is the body of POST /api/inserir-coleta.
// Data and Horario are optional; the server clock fills absent values.
type insertCollectionRequest struct {
	Tipo    string `json:"tipo"`
	Data    string `json:"data,omitempty"`
	Horario string `json:"horario,omitempty"`
}

// insertDetectionRequest is the body of POST /api/inserir-coleta-ia:
// the bare classifier code transmitted by the device loop.
type insertDetectionRequest struct {
	Numero int `json:"numero"`
}

// updateCollectionRequest is the body of PUT /api/coleta/{id}.
// Pointers distinguish "absent" from "empty" — only provided fields change.
type updateCollectionRequest struct {
	Tipo    *string `json:"tipo"`
	Data    *string `json:"data"`
	Horario *string `json:"horario"`
}

// InsertCollection handles POST /api/inserir-coleta.
func (s *Server) InsertCollection(w http.ResponseWriter, r *http.Request) {
	var req insertCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErro(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(req.Tipo) == "" {
		respondErro(w, http.StatusBadRequest, "Tipo de material é obrigatório")
		return
	}

	created, err := s.collections.Ingest(r.Context(), req.Tipo, req.Data, req.Horario)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"sucesso": true,
		"id":      created.ID,
		"tipo":    created.Tipo,
	})
}

// InsertDetection handles POST /api/inserir-coleta-ia.
// An empty reading (code 5) is a success for the device — nothing is stored
// and the response says so with 200 {sucesso:false}.
func (s *Server) InsertDetection(w http.ResponseWriter, r *http.Request) {
	var req insertDetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErro(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	created, err := s.collections.IngestDetection(r.Context(), req.Numero)
	if err != nil {
		if errors.Is(err, domain.ErrNoMaterial) {
			respondJSON(w, http.StatusOK, map[string]any{"sucesso": false})
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"sucesso": true,
		"id":      created.ID,
		"tipo":    created.Tipo,
		"numero":  req.Numero,
	})
}

// ListCollections handles GET /api/coletas, newest first.
// An optional ?limit=N query restricts the result to the N newest events —
// the polling dashboard asks for its three history slots this way.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Collection
		err  error
	)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			respondErro(w, http.StatusBadRequest, "Parâmetro limit inválido")
			return
		}
		list, err = s.collections.MostRecent(r.Context(), n)
	} else {
		list, err = s.collections.List(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// ListCollectionsByMaterial handles GET /api/coletas/{tipo}.
func (s *Server) ListCollectionsByMaterial(w http.ResponseWriter, r *http.Request) {
	list, err := s.collections.ListByMaterial(r.Context(), chi.URLParam(r, "tipo"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// ListCollectionsByDate handles GET /api/coletas/data/{data}.
func (s *Server) ListCollectionsByDate(w http.ResponseWriter, r *http.Request) {
	list, err := s.collections.ListByDate(r.Context(), chi.URLParam(r, "data"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// CountToday handles GET /api/coletas/today/count.
func (s *Server) CountToday(w http.ResponseWriter, r *http.Request) {
	total, err := s.collections.TodayTotal(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"total_itens": total})
}

// GetStatistics handles GET /api/estatisticas?tipo=.
// Totals come back sorted descending; ties keep first-recorded order.
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.collections.CountsByMaterial(r.Context(), r.URL.Query().Get("tipo"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if counts == nil {
		counts = []domain.MaterialCount{}
	}
	respondJSON(w, http.StatusOK, counts)
}

// GetLatestCollection handles GET /api/ultima-coleta.
// With no events stored the body is a literal JSON null, as the dashboard expects.
func (s *Server) GetLatestCollection(w http.ResponseWriter, r *http.Request) {
	latest, err := s.collections.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondJSON(w, http.StatusOK, nil)
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, latest)
}

// UpdateCollection handles PUT /api/coleta/{id}.
func (s *Server) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErro(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	affected, err := s.collections.Update(r.Context(), id, domain.CollectionPatch{
		Tipo:    req.Tipo,
		Data:    req.Data,
		Horario: req.Horario,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"sucesso":      true,
		"affectedRows": affected,
	})
}

// DeleteCollection handles DELETE /api/coleta/{id}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.collections.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"sucesso":  true,
		"mensagem": "Coleta deletada com sucesso",
	})
}

// pathID parses the {id} path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondErro(w, http.StatusBadRequest, "Identificador inválido")
		return 0, false
	}
	return id, true
}

// nonNil replaces a nil slice with an empty one so the JSON body is always
// an array, never null.
func nonNil(list []domain.Collection) []domain.Collection {
	if list == nil {
		return []domain.Collection{}
	}
	return list
}
