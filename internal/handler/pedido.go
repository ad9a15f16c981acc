package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ajuda-api/internal/models"
	"ajuda-api/internal/repository"
	"ajuda-api/internal/triage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TriageSubmitter is the piece of the triage pipeline the HTTP layer talks
// to: a non-blocking submission that either admits the pedido or reports why
// it was rejected.
type TriageSubmitter interface {
	Submit(pedidoID int64, features triage.FeatureVector) error
}

type PedidoHandler interface {
	ListPedidos(c *gin.Context)
	GetPedidoByID(c *gin.Context)
	CreatePedido(c *gin.Context)
	UpdatePedido(c *gin.Context)
	DeletePedido(c *gin.Context)
}

type pedidoHandler struct {
	repo     repository.PedidoRepository
	pipeline TriageSubmitter
	logger   *zap.Logger
}

func NewPedidoHandler(repo repository.PedidoRepository, pipeline TriageSubmitter, logger *zap.Logger) PedidoHandler {
	return &pedidoHandler{repo: repo, pipeline: pipeline, logger: logger}
}

type PedidoRequest struct {
	UsuarioID           int64  `json:"usuario_id" binding:"required"`
	TipoAjudaID         int64  `json:"tipo_ajuda_id" binding:"required"`
	Descricao           string `json:"descricao"`
	CriancasNoLocal     int    `json:"criancas_no_local"`
	PessoasNoLocal      int    `json:"pessoas_no_local"`
	DiasSemAjuda        int    `json:"dias_sem_ajuda"`
	VoluntariosProximos int    `json:"voluntarios_proximos"`
}

func (r PedidoRequest) features() triage.FeatureVector {
	return triage.FeatureVector{
		TipoAjudaID:         int(r.TipoAjudaID),
		CriancasNoLocal:     r.CriancasNoLocal,
		PessoasNoLocal:      r.PessoasNoLocal,
		DiasSemAjuda:        r.DiasSemAjuda,
		VoluntariosProximos: r.VoluntariosProximos,
	}
}

func (r PedidoRequest) model() *models.PedidoAjuda {
	return &models.PedidoAjuda{
		UsuarioID:           r.UsuarioID,
		TipoAjudaID:         r.TipoAjudaID,
		Descricao:           r.Descricao,
		CriancasNoLocal:     r.CriancasNoLocal,
		PessoasNoLocal:      r.PessoasNoLocal,
		DiasSemAjuda:        r.DiasSemAjuda,
		VoluntariosProximos: r.VoluntariosProximos,
		TriageStatus:        models.TriagePending,
	}
}

// ListPedidos handles GET /api/pedidos.
// Query parameters:
// - status: filter by triage status (optional)
// - tipo_ajuda_id: filter by help type (optional)
func (h *pedidoHandler) ListPedidos(c *gin.Context) {
	filter := repository.PedidoFilter{TriageStatus: c.Query("status")}
	if raw := c.Query("tipo_ajuda_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tipo_ajuda_id filter"})
			return
		}
		filter.TipoAjudaID = id
	}

	pedidos, err := h.repo.ListPedidos(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list pedidos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pedidos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pedidos": pedidos})
}

// GetPedidoByID handles GET /api/pedidos/:id.
func (h *pedidoHandler) GetPedidoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	pedido, err := h.repo.GetPedidoByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get pedido", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pedido"})
		return
	}
	if pedido == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pedido": pedido})
}

// CreatePedido handles POST /api/pedidos. The pedido is stored synchronously
// with a pending triage status; classification happens in the background. A
// full triage queue does not fail the request: the pedido stays pending and
// the sweep resubmits it later.
func (h *pedidoHandler) CreatePedido(c *gin.Context) {
	var req PedidoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	features := req.features()
	if err := features.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pedido := req.model()
	if err := h.repo.CreatePedido(c.Request.Context(), pedido); err != nil {
		h.logger.Error("Failed to create pedido", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pedido"})
		return
	}

	h.submitTriage(pedido.ID, features)
	c.JSON(http.StatusCreated, gin.H{"pedido": pedido})
}

// UpdatePedido handles PUT /api/pedidos/:id. Editing a pedido resets its
// triage status and resubmits it for classification.
func (h *pedidoHandler) UpdatePedido(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PedidoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	features := req.features()
	if err := features.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pedido := req.model()
	pedido.ID = id
	found, err := h.repo.UpdatePedido(c.Request.Context(), pedido)
	if err != nil {
		h.logger.Error("Failed to update pedido", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pedido"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado"})
		return
	}

	h.submitTriage(id, features)
	c.Status(http.StatusNoContent)
}

// DeletePedido handles DELETE /api/pedidos/:id.
func (h *pedidoHandler) DeletePedido(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.repo.DeletePedido(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete pedido", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pedido"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *pedidoHandler) submitTriage(pedidoID int64, features triage.FeatureVector) {
	err := h.pipeline.Submit(pedidoID, features)
	if err == nil {
		return
	}
	if errors.Is(err, triage.ErrQueueFull) {
		h.logger.Warn("Triage queue full, pedido left pending for the sweep",
			zap.Int64("pedido_id", pedidoID))
		return
	}
	h.logger.Error("Failed to submit pedido for triage", zap.Int64("pedido_id", pedidoID), zap.Error(err))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
