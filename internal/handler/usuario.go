package handler

import (
	"net/http"

	"ajuda-api/internal/models"
	"ajuda-api/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UsuarioHandler interface {
	ListUsuarios(c *gin.Context)
	GetUsuarioByID(c *gin.Context)
	CreateUsuario(c *gin.Context)
	UpdateUsuario(c *gin.Context)
	DeleteUsuario(c *gin.Context)
}

type usuarioHandler struct {
	repo   repository.UsuarioRepository
	logger *zap.Logger
}

func NewUsuarioHandler(repo repository.UsuarioRepository, logger *zap.Logger) UsuarioHandler {
	return &usuarioHandler{repo: repo, logger: logger}
}

type UsuarioRequest struct {
	Nome         string `json:"nome" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Telefone     string `json:"telefone"`
	EhVoluntario int    `json:"eh_voluntario"`
}

func (h *usuarioHandler) ListUsuarios(c *gin.Context) {
	usuarios, err := h.repo.ListUsuarios(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list usuarios", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usuarios"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usuarios": usuarios})
}

func (h *usuarioHandler) GetUsuarioByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	usuario, err := h.repo.GetUsuarioByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get usuario", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usuario"})
		return
	}
	if usuario == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usuario": usuario})
}

func (h *usuarioHandler) CreateUsuario(c *gin.Context) {
	var req UsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EhVoluntario != 0 && req.EhVoluntario != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campo eh_voluntario inválido. Use 1 para Sim ou 0 para Não."})
		return
	}

	usuario := &models.Usuario{
		Nome:         req.Nome,
		Email:        req.Email,
		Telefone:     req.Telefone,
		EhVoluntario: req.EhVoluntario,
	}
	if err := h.repo.CreateUsuario(c.Request.Context(), usuario); err != nil {
		h.logger.Error("Failed to create usuario", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create usuario"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"usuario": usuario})
}

func (h *usuarioHandler) UpdateUsuario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EhVoluntario != 0 && req.EhVoluntario != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campo eh_voluntario inválido. Use 1 para Sim ou 0 para Não."})
		return
	}

	usuario := &models.Usuario{
		ID:           id,
		Nome:         req.Nome,
		Email:        req.Email,
		Telefone:     req.Telefone,
		EhVoluntario: req.EhVoluntario,
	}
	found, err := h.repo.UpdateUsuario(c.Request.Context(), usuario)
	if err != nil {
		h.logger.Error("Failed to update usuario", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update usuario"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *usuarioHandler) DeleteUsuario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.repo.DeleteUsuario(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete usuario", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete usuario"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}
