package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ajuda-api/internal/config"
	"ajuda-api/internal/handler"
	"ajuda-api/internal/middleware"
	"ajuda-api/internal/repository"
	"ajuda-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	cfg      *config.Config
	pipeline handler.TriageSubmitter
	db       *sqlx.DB
	limiter  *middleware.FixedWindowLimiter
}

func NewServer(db *sqlx.DB, cfg *config.Config, pipeline handler.TriageSubmitter, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:   router,
		logger:   logger,
		cfg:      cfg,
		pipeline: pipeline,
		db:       db,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	usuarioRepo := repository.NewUsuarioRepository(s.db, s.logger)
	tipoAjudaRepo := repository.NewTipoAjudaRepository(s.db, s.logger)
	pedidoRepo := repository.NewPedidoRepository(s.db, s.logger)
	operadorRepo := repository.NewOperadorRepository(s.db, s.logger)

	tokenTTL := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour
	authService := service.NewAuthService(operadorRepo, []byte(s.cfg.Auth.JWTSecret), tokenTTL, s.logger)

	usuarioHandler := handler.NewUsuarioHandler(usuarioRepo, s.logger)
	tipoAjudaHandler := handler.NewTipoAjudaHandler(tipoAjudaRepo, s.logger)
	pedidoHandler := handler.NewPedidoHandler(pedidoRepo, s.pipeline, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	// Admission gate: every request passes the per-client fixed-window
	// limiter before reaching a handler.
	window := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
	s.limiter = middleware.NewFixedWindowLimiter(s.cfg.RateLimit.Requests, window)
	s.router.Use(middleware.RateLimit(s.limiter))

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := s.router.Group("/api")
	{
		api.GET("/usuarios", usuarioHandler.ListUsuarios)
		api.GET("/usuarios/:id", usuarioHandler.GetUsuarioByID)
		api.POST("/usuarios", usuarioHandler.CreateUsuario)
		api.PUT("/usuarios/:id", usuarioHandler.UpdateUsuario)

		api.GET("/tipos-ajuda", tipoAjudaHandler.ListTiposAjuda)
		api.GET("/tipos-ajuda/:id", tipoAjudaHandler.GetTipoAjudaByID)
		api.POST("/tipos-ajuda", tipoAjudaHandler.CreateTipoAjuda)
		api.PUT("/tipos-ajuda/:id", tipoAjudaHandler.UpdateTipoAjuda)

		api.GET("/pedidos", pedidoHandler.ListPedidos)
		api.GET("/pedidos/:id", pedidoHandler.GetPedidoByID)
		api.POST("/pedidos", pedidoHandler.CreatePedido)
		api.PUT("/pedidos/:id", pedidoHandler.UpdatePedido)
	}

	// Destructive operations require an authenticated operator.
	protected := s.router.Group("/api")
	protected.Use(middleware.Auth([]byte(s.cfg.Auth.JWTSecret), s.logger))
	{
		protected.DELETE("/usuarios/:id", usuarioHandler.DeleteUsuario)
		protected.DELETE("/tipos-ajuda/:id", tipoAjudaHandler.DeleteTipoAjuda)
		protected.DELETE("/pedidos/:id", pedidoHandler.DeletePedido)
	}
}

// Run serves HTTP until the context is cancelled, then shuts the listener
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	s.limiter.StartJanitor(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
