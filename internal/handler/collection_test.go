package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpontes/smartbin/backend/internal/domain"
	"github.com/dpontes/smartbin/backend/internal/handler"
)

// mockCollectionServicer is a hand-written test double for
// handler.CollectionServicer. Each method is a function field — set only
// the ones your test needs.
type mockCollectionServicer struct {
	ingest           func(ctx context.Context, rawTipo, rawData, rawHorario string) (domain.Collection, error)
	ingestDetection  func(ctx context.Context, code int) (domain.Collection, error)
	list             func(ctx context.Context) ([]domain.Collection, error)
	listByMaterial   func(ctx context.Context, rawTipo string) ([]domain.Collection, error)
	listByDate       func(ctx context.Context, rawData string) ([]domain.Collection, error)
	countsByMaterial func(ctx context.Context, rawFilter string) ([]domain.MaterialCount, error)
	todayTotal       func(ctx context.Context) (int, error)
	mostRecent       func(ctx context.Context, n int) ([]domain.Collection, error)
	latest           func(ctx context.Context) (domain.Collection, error)
	update           func(ctx context.Context, id int64, patch domain.CollectionPatch) (int64, error)
	delete           func(ctx context.Context, id int64) error
}

func (m *mockCollectionServicer) Ingest(ctx context.Context, rawTipo, rawData, rawHorario string) (domain.Collection, error) {
	return m.ingest(ctx, rawTipo, rawData, rawHorario)
}
func (m *mockCollectionServicer) IngestDetection(ctx context.Context, code int) (domain.Collection, error) {
	return m.ingestDetection(ctx, code)
}
func (m *mockCollectionServicer) List(ctx context.Context) ([]domain.Collection, error) {
	return m.list(ctx)
}
func (m *mockCollectionServicer) ListByMaterial(ctx context.Context, rawTipo string) ([]domain.Collection, error) {
	return m.listByMaterial(ctx, rawTipo)
}
func (m *mockCollectionServicer) ListByDate(ctx context.Context, rawData string) ([]domain.Collection, error) {
	return m.listByDate(ctx, rawData)
}
func (m *mockCollectionServicer) CountsByMaterial(ctx context.Context, rawFilter string) ([]domain.MaterialCount, error) {
	return m.countsByMaterial(ctx, rawFilter)
}
func (m *mockCollectionServicer) TodayTotal(ctx context.Context) (int, error) {
	return m.todayTotal(ctx)
}
func (m *mockCollectionServicer) MostRecent(ctx context.Context, n int) ([]domain.Collection, error) {
	return m.mostRecent(ctx, n)
}
func (m *mockCollectionServicer) Latest(ctx context.Context) (domain.Collection, error) {
	return m.latest(ctx)
}
func (m *mockCollectionServicer) Update(ctx context.Context, id int64, patch domain.CollectionPatch) (int64, error) {
	return m.update(ctx, id, patch)
}
func (m *mockCollectionServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ handler.CollectionServicer = (*mockCollectionServicer)(nil)

// doRequest routes req through a full router so path params and route
// precedence behave exactly as in production.
func doRequest(t *testing.T, svc handler.CollectionServicer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	handler.NewServer(svc).Routes(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

// ---- POST /api/inserir-coleta ----------------------------------------------

func TestInsertCollection_created(t *testing.T) {
	svc := &mockCollectionServicer{
		ingest: func(_ context.Context, rawTipo, rawData, rawHorario string) (domain.Collection, error) {
			assert.Equal(t, "papel", rawTipo)
			assert.Equal(t, "2024-03-05", rawData)
			assert.Equal(t, "14:30:00", rawHorario)
			return domain.Collection{ID: 7, Tipo: domain.MaterialPapel, Data: rawData, Horario: rawHorario}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta",
		`{"tipo":"papel","data":"2024-03-05","horario":"14:30:00"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["sucesso"])
	assert.EqualValues(t, 7, got["id"])
	assert.Equal(t, "papel", got["tipo"])
}

func TestInsertCollection_missingTipo(t *testing.T) {
	rec := doRequest(t, &mockCollectionServicer{}, http.MethodPost, "/api/inserir-coleta", `{"tipo":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tipo de material é obrigatório", decodeBody(t, rec)["erro"])
}

func TestInsertCollection_invalidMaterial(t *testing.T) {
	svc := &mockCollectionServicer{
		ingest: func(_ context.Context, _, _, _ string) (domain.Collection, error) {
			return domain.Collection{}, domain.ErrInvalidMaterial
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta", `{"tipo":"madeira"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tipo de material inválido", decodeBody(t, rec)["erro"])
}

// TestInsertCollection_emptyMarkerRejected pins the asymmetry with the
// detection endpoint: on the manual endpoint "vazio" is a client error.
func TestInsertCollection_emptyMarkerRejected(t *testing.T) {
	svc := &mockCollectionServicer{
		ingest: func(_ context.Context, _, _, _ string) (domain.Collection, error) {
			return domain.Collection{}, domain.ErrNoMaterial
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta", `{"tipo":"vazio"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Nenhum material detectado", decodeBody(t, rec)["erro"])
}

func TestInsertCollection_malformedBody(t *testing.T) {
	rec := doRequest(t, &mockCollectionServicer{}, http.MethodPost, "/api/inserir-coleta", `{"tipo":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Corpo da requisição inválido", decodeBody(t, rec)["erro"])
}

func TestInsertCollection_storageFailure(t *testing.T) {
	svc := &mockCollectionServicer{
		ingest: func(_ context.Context, _, _, _ string) (domain.Collection, error) {
			return domain.Collection{}, errors.New("pool exhausted")
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta", `{"tipo":"metal"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ---- POST /api/inserir-coleta-ia -------------------------------------------

func TestInsertDetection_created(t *testing.T) {
	svc := &mockCollectionServicer{
		ingestDetection: func(_ context.Context, code int) (domain.Collection, error) {
			assert.Equal(t, 3, code)
			return domain.Collection{ID: 12, Tipo: domain.MaterialPapel}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta-ia", `{"numero":3}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["sucesso"])
	assert.EqualValues(t, 12, got["id"])
	assert.Equal(t, "papel", got["tipo"])
	assert.EqualValues(t, 3, got["numero"])
}

// TestInsertDetection_emptyReading verifies the device contract: an empty
// bin reading is acknowledged with 200 {sucesso:false}, not an error.
func TestInsertDetection_emptyReading(t *testing.T) {
	svc := &mockCollectionServicer{
		ingestDetection: func(_ context.Context, _ int) (domain.Collection, error) {
			return domain.Collection{}, domain.ErrNoMaterial
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta-ia", `{"numero":5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, false, got["sucesso"])
	assert.NotContains(t, got, "id")
}

func TestInsertDetection_unknownCode(t *testing.T) {
	svc := &mockCollectionServicer{
		ingestDetection: func(_ context.Context, _ int) (domain.Collection, error) {
			return domain.Collection{}, domain.ErrInvalidMaterial
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/api/inserir-coleta-ia", `{"numero":9}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /api/coletas ------------------------------------------------------

func TestListCollections(t *testing.T) {
	svc := &mockCollectionServicer{
		list: func(_ context.Context) ([]domain.Collection, error) {
			return []domain.Collection{
				{ID: 2, Tipo: domain.MaterialVidro, Data: "2024-03-05", Horario: "15:00:00"},
				{ID: 1, Tipo: domain.MaterialMetal, Data: "2024-03-05", Horario: "14:00:00"},
			}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.EqualValues(t, 2, got[0].ID, "newest first")
}

func TestListCollections_emptyIsArrayNotNull(t *testing.T) {
	svc := &mockCollectionServicer{
		list: func(_ context.Context) ([]domain.Collection, error) { return nil, nil },
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListCollections_limit(t *testing.T) {
	svc := &mockCollectionServicer{
		mostRecent: func(_ context.Context, n int) ([]domain.Collection, error) {
			assert.Equal(t, 3, n)
			return []domain.Collection{{ID: 9}}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas?limit=3", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCollections_badLimit(t *testing.T) {
	rec := doRequest(t, &mockCollectionServicer{}, http.MethodGet, "/api/coletas?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, &mockCollectionServicer{}, http.MethodGet, "/api/coletas?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /api/coletas/{tipo} and friends -----------------------------------

func TestListCollectionsByMaterial(t *testing.T) {
	svc := &mockCollectionServicer{
		listByMaterial: func(_ context.Context, rawTipo string) ([]domain.Collection, error) {
			assert.Equal(t, "vidro", rawTipo)
			return []domain.Collection{{ID: 4, Tipo: domain.MaterialVidro}}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas/vidro", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRoutePrecedence verifies that the static "today" and "data" segments
// win over the {tipo} wildcard.
func TestRoutePrecedence(t *testing.T) {
	svc := &mockCollectionServicer{
		todayTotal: func(_ context.Context) (int, error) { return 8, nil },
		listByDate: func(_ context.Context, rawData string) ([]domain.Collection, error) {
			assert.Equal(t, "2024-03-05", rawData)
			return nil, nil
		},
		listByMaterial: func(_ context.Context, _ string) ([]domain.Collection, error) {
			t.Fatal("static routes must not fall through to the material filter")
			return nil, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas/today/count", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 8, decodeBody(t, rec)["total_itens"])

	rec = doRequest(t, svc, http.MethodGet, "/api/coletas/data/2024-03-05", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCollectionsByDate_malformed(t *testing.T) {
	svc := &mockCollectionServicer{
		listByDate: func(_ context.Context, _ string) ([]domain.Collection, error) {
			return nil, domain.ErrInvalidDate
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/coletas/data/05-03-2024", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Formato de data inválido (esperado YYYY-MM-DD)", decodeBody(t, rec)["erro"])
}

// ---- GET /api/estatisticas -------------------------------------------------

func TestGetStatistics(t *testing.T) {
	svc := &mockCollectionServicer{
		countsByMaterial: func(_ context.Context, rawFilter string) ([]domain.MaterialCount, error) {
			assert.Equal(t, "", rawFilter)
			return []domain.MaterialCount{
				{Tipo: domain.MaterialMetal, Total: 3},
				{Tipo: domain.MaterialVidro, Total: 1},
			}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/estatisticas", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []domain.MaterialCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, domain.MaterialMetal, got[0].Tipo)
}

func TestGetStatistics_filterPassedThrough(t *testing.T) {
	svc := &mockCollectionServicer{
		countsByMaterial: func(_ context.Context, rawFilter string) ([]domain.MaterialCount, error) {
			assert.Equal(t, "papel", rawFilter)
			return nil, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/estatisticas?tipo=papel", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

// ---- GET /api/ultima-coleta ------------------------------------------------

func TestGetLatestCollection(t *testing.T) {
	svc := &mockCollectionServicer{
		latest: func(_ context.Context) (domain.Collection, error) {
			return domain.Collection{ID: 30, Tipo: domain.MaterialPlastico, Data: "2024-03-05", Horario: "18:45:00"}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/ultima-coleta", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "plastico", got["tipo"])
	assert.Equal(t, "18:45:00", got["horario"])
}

// TestGetLatestCollection_noneStored pins the JSON null contract for an
// empty store.
func TestGetLatestCollection_noneStored(t *testing.T) {
	svc := &mockCollectionServicer{
		latest: func(_ context.Context) (domain.Collection, error) {
			return domain.Collection{}, domain.ErrNotFound
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/api/ultima-coleta", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

// ---- PUT /api/coleta/{id} --------------------------------------------------

func TestUpdateCollection(t *testing.T) {
	svc := &mockCollectionServicer{
		update: func(_ context.Context, id int64, patch domain.CollectionPatch) (int64, error) {
			assert.EqualValues(t, 15, id)
			require.NotNil(t, patch.Tipo)
			assert.Equal(t, "vidro", *patch.Tipo)
			assert.Nil(t, patch.Data)
			assert.Nil(t, patch.Horario)
			return 1, nil
		},
	}

	rec := doRequest(t, svc, http.MethodPut, "/api/coleta/15", `{"tipo":"vidro"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["sucesso"])
	assert.EqualValues(t, 1, got["affectedRows"])
}

func TestUpdateCollection_noFields(t *testing.T) {
	svc := &mockCollectionServicer{
		update: func(_ context.Context, _ int64, _ domain.CollectionPatch) (int64, error) {
			return 0, domain.ErrNoFields
		},
	}

	rec := doRequest(t, svc, http.MethodPut, "/api/coleta/15", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Nenhum campo válido para atualizar", decodeBody(t, rec)["erro"])
}

func TestUpdateCollection_notFound(t *testing.T) {
	svc := &mockCollectionServicer{
		update: func(_ context.Context, _ int64, _ domain.CollectionPatch) (int64, error) {
			return 0, domain.ErrNotFound
		},
	}

	rec := doRequest(t, svc, http.MethodPut, "/api/coleta/999", `{"tipo":"metal"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Registro não encontrado", decodeBody(t, rec)["erro"])
}

func TestUpdateCollection_badID(t *testing.T) {
	rec := doRequest(t, &mockCollectionServicer{}, http.MethodPut, "/api/coleta/abc", `{"tipo":"metal"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Identificador inválido", decodeBody(t, rec)["erro"])
}

// ---- DELETE /api/coleta/{id} -----------------------------------------------

func TestDeleteCollection(t *testing.T) {
	svc := &mockCollectionServicer{
		delete: func(_ context.Context, id int64) error {
			assert.EqualValues(t, 15, id)
			return nil
		},
	}

	rec := doRequest(t, svc, http.MethodDelete, "/api/coleta/15", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, true, got["sucesso"])
	assert.Equal(t, "Coleta deletada com sucesso", got["mensagem"])
}

func TestDeleteCollection_notFound(t *testing.T) {
	svc := &mockCollectionServicer{
		delete: func(_ context.Context, _ int64) error { return domain.ErrNotFound },
	}

	rec := doRequest(t, svc, http.MethodDelete, "/api/coleta/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
