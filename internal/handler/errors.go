package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dpontes/smartbin/backend/internal/domain"
)

// errorResponse is the error body every endpoint uses: {"erro": "<reason>"}.
// The field name is part of the wire contract with the dashboard.
type errorResponse struct {
	Erro string `json:"erro"`
}

// respondJSON writes v as a JSON body with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a handler-built value cannot fail in practice; an error here
	// means the connection is gone and there is nothing left to tell the client.
	_ = json.NewEncoder(w).Encode(v)
}

// respondErro writes an errorResponse with the given status and message.
func respondErro(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Erro: message})
}

// respondServiceError maps a service-layer error onto the HTTP contract:
// validation → 400 with a fixed reason, not-found → 404, empty detection →
// 400 (ingestion endpoints that treat it differently handle it before
// calling this), anything else → 500 with the underlying message passed
// through, matching the original server's behavior.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondErro(w, http.StatusNotFound, "Registro não encontrado")
	case errors.Is(err, domain.ErrInvalidMaterial):
		respondErro(w, http.StatusBadRequest, "Tipo de material inválido")
	case errors.Is(err, domain.ErrInvalidDate):
		respondErro(w, http.StatusBadRequest, "Formato de data inválido (esperado YYYY-MM-DD)")
	case errors.Is(err, domain.ErrInvalidTime):
		respondErro(w, http.StatusBadRequest, "Horário inválido (esperado HH:MM:SS)")
	case errors.Is(err, domain.ErrNoFields):
		respondErro(w, http.StatusBadRequest, "Nenhum campo válido para atualizar")
	case errors.Is(err, domain.ErrNoMaterial):
		respondErro(w, http.StatusBadRequest, "Nenhum material detectado")
	case errors.Is(err, domain.ErrValidation):
		respondErro(w, http.StatusBadRequest, err.Error())
	default:
		respondErro(w, http.StatusInternalServerError, err.Error())
	}
}
