package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ajuda-api/internal/models"
	"ajuda-api/internal/repository"
	"ajuda-api/internal/triage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fakePedidoRepo implements repository.PedidoRepository in memory.
type fakePedidoRepo struct {
	mu      sync.Mutex
	nextID  int64
	pedidos map[int64]*models.PedidoAjuda
}

func newFakePedidoRepo() *fakePedidoRepo {
	return &fakePedidoRepo{nextID: 1, pedidos: make(map[int64]*models.PedidoAjuda)}
}

func (f *fakePedidoRepo) ListPedidos(_ context.Context, filter repository.PedidoFilter) ([]*models.PedidoAjuda, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PedidoAjuda
	for _, p := range f.pedidos {
		if filter.TriageStatus != "" && p.TriageStatus != filter.TriageStatus {
			continue
		}
		if filter.TipoAjudaID > 0 && p.TipoAjudaID != filter.TipoAjudaID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePedidoRepo) GetPedidoByID(_ context.Context, id int64) (*models.PedidoAjuda, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pedidos[id], nil
}

func (f *fakePedidoRepo) CreatePedido(_ context.Context, pedido *models.PedidoAjuda) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pedido.ID = f.nextID
	f.nextID++
	pedido.CreatedAt = time.Now()
	f.pedidos[pedido.ID] = pedido
	return nil
}

func (f *fakePedidoRepo) UpdatePedido(_ context.Context, pedido *models.PedidoAjuda) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pedidos[pedido.ID]; !ok {
		return false, nil
	}
	f.pedidos[pedido.ID] = pedido
	return true, nil
}

func (f *fakePedidoRepo) DeletePedido(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pedidos[id]; !ok {
		return false, nil
	}
	delete(f.pedidos, id)
	return true, nil
}

func (f *fakePedidoRepo) GetFeatures(_ context.Context, id int64) (triage.FeatureVector, error) {
	return triage.FeatureVector{}, triage.ErrNotFound
}

func (f *fakePedidoRepo) UpdateUrgency(_ context.Context, id int64, _ triage.UrgencyResult) error {
	return triage.ErrNotFound
}

func (f *fakePedidoRepo) MarkTriageFailed(_ context.Context, id int64) error {
	return triage.ErrNotFound
}

func (f *fakePedidoRepo) ListPendingTriage(_ context.Context, _ time.Time, _ int) ([]triage.PendingPedido, error) {
	return nil, nil
}

// fakeSubmitter records submissions and can simulate a full queue.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []int64
	err       error
}

func (f *fakeSubmitter) Submit(pedidoID int64, _ triage.FeatureVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, pedidoID)
	return nil
}

func setupPedidoRouter(repo repository.PedidoRepository, submitter TriageSubmitter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPedidoHandler(repo, submitter, zap.NewNop())
	router := gin.New()
	router.GET("/api/pedidos", h.ListPedidos)
	router.GET("/api/pedidos/:id", h.GetPedidoByID)
	router.POST("/api/pedidos", h.CreatePedido)
	router.PUT("/api/pedidos/:id", h.UpdatePedido)
	router.DELETE("/api/pedidos/:id", h.DeletePedido)
	return router
}

func postJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func validRequest() PedidoRequest {
	return PedidoRequest{
		UsuarioID:           1,
		TipoAjudaID:         1,
		Descricao:           "Família sem mantimentos",
		CriancasNoLocal:     1,
		PessoasNoLocal:      4,
		DiasSemAjuda:        10,
		VoluntariosProximos: 0,
	}
}

func TestCreatePedidoSubmitsTriage(t *testing.T) {
	repo := newFakePedidoRepo()
	submitter := &fakeSubmitter{}
	router := setupPedidoRouter(repo, submitter)

	w := postJSON(router, http.MethodPost, "/api/pedidos", validRequest())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	if len(submitter.submitted) != 1 || submitter.submitted[0] != 1 {
		t.Errorf("submitted = %v, want [1]", submitter.submitted)
	}
	if repo.pedidos[1].TriageStatus != models.TriagePending {
		t.Errorf("created pedido status = %q, want pending", repo.pedidos[1].TriageStatus)
	}
}

func TestCreatePedidoQueueFullStillAccepted(t *testing.T) {
	repo := newFakePedidoRepo()
	submitter := &fakeSubmitter{err: triage.ErrQueueFull}
	router := setupPedidoRouter(repo, submitter)

	w := postJSON(router, http.MethodPost, "/api/pedidos", validRequest())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 despite full queue: %s", w.Code, w.Body.String())
	}

	pedido := repo.pedidos[1]
	if pedido == nil {
		t.Fatal("pedido not persisted")
	}
	if pedido.TriageStatus != models.TriagePending {
		t.Errorf("pedido status = %q, want pending", pedido.TriageStatus)
	}
}

func TestCreatePedidoInvalidFeatures(t *testing.T) {
	repo := newFakePedidoRepo()
	submitter := &fakeSubmitter{}
	router := setupPedidoRouter(repo, submitter)

	req := validRequest()
	req.CriancasNoLocal = 2

	w := postJSON(router, http.MethodPost, "/api/pedidos", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if len(repo.pedidos) != 0 {
		t.Error("invalid pedido was persisted")
	}
	if len(submitter.submitted) != 0 {
		t.Error("invalid pedido was submitted for triage")
	}
}

func TestGetPedidoNotFound(t *testing.T) {
	router := setupPedidoRouter(newFakePedidoRepo(), &fakeSubmitter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pedidos/42", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUpdatePedidoResubmitsTriage(t *testing.T) {
	repo := newFakePedidoRepo()
	submitter := &fakeSubmitter{}
	router := setupPedidoRouter(repo, submitter)

	if w := postJSON(router, http.MethodPost, "/api/pedidos", validRequest()); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	update := validRequest()
	update.DiasSemAjuda = 20
	w := postJSON(router, http.MethodPut, "/api/pedidos/1", update)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, want 204: %s", w.Code, w.Body.String())
	}

	if len(submitter.submitted) != 2 {
		t.Errorf("submitted %d jobs, want 2 (create + update)", len(submitter.submitted))
	}
}

func TestDeletePedido(t *testing.T) {
	repo := newFakePedidoRepo()
	router := setupPedidoRouter(repo, &fakeSubmitter{})

	if w := postJSON(router, http.MethodPost, "/api/pedidos", validRequest()); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/pedidos/1", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/pedidos/1", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}
