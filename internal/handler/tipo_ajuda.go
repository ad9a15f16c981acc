package handler

import (
	"net/http"

	"ajuda-api/internal/models"
	"ajuda-api/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TipoAjudaHandler interface {
	ListTiposAjuda(c *gin.Context)
	GetTipoAjudaByID(c *gin.Context)
	CreateTipoAjuda(c *gin.Context)
	UpdateTipoAjuda(c *gin.Context)
	DeleteTipoAjuda(c *gin.Context)
}

type tipoAjudaHandler struct {
	repo   repository.TipoAjudaRepository
	logger *zap.Logger
}

func NewTipoAjudaHandler(repo repository.TipoAjudaRepository, logger *zap.Logger) TipoAjudaHandler {
	return &tipoAjudaHandler{repo: repo, logger: logger}
}

type TipoAjudaRequest struct {
	Nome      string `json:"nome" binding:"required"`
	Descricao string `json:"descricao"`
}

func (h *tipoAjudaHandler) ListTiposAjuda(c *gin.Context) {
	tipos, err := h.repo.ListTiposAjuda(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tipos de ajuda", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tipos de ajuda"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tipos_ajuda": tipos})
}

func (h *tipoAjudaHandler) GetTipoAjudaByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tipo, err := h.repo.GetTipoAjudaByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get tipo de ajuda", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tipo de ajuda"})
		return
	}
	if tipo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tipo de ajuda não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tipo_ajuda": tipo})
}

func (h *tipoAjudaHandler) CreateTipoAjuda(c *gin.Context) {
	var req TipoAjudaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tipo := &models.TipoAjuda{Nome: req.Nome, Descricao: req.Descricao}
	if err := h.repo.CreateTipoAjuda(c.Request.Context(), tipo); err != nil {
		h.logger.Error("Failed to create tipo de ajuda", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tipo de ajuda"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tipo_ajuda": tipo})
}

func (h *tipoAjudaHandler) UpdateTipoAjuda(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TipoAjudaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tipo := &models.TipoAjuda{ID: id, Nome: req.Nome, Descricao: req.Descricao}
	found, err := h.repo.UpdateTipoAjuda(c.Request.Context(), tipo)
	if err != nil {
		h.logger.Error("Failed to update tipo de ajuda", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tipo de ajuda"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tipo de ajuda não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *tipoAjudaHandler) DeleteTipoAjuda(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.repo.DeleteTipoAjuda(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete tipo de ajuda", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tipo de ajuda"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tipo de ajuda não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}
