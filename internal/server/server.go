package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/auth"
	"github.com/hongminglow/industico-be/internal/config"
	"github.com/hongminglow/industico-be/internal/http/handlers"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/payments"
	"github.com/hongminglow/industico-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, repo *storage.Repository, intents payments.IntentCreator) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, repo, tokens, intents),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the gin engine with every storefront route registered.
func NewRouter(cfg config.Config, repo *storage.Repository, tokens *auth.TokenManager, intents payments.IntentCreator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logging(), middleware.CORS(cfg.CORSOrigins))

	gates := handlers.Gates{
		Token:    middleware.RequireToken(tokens),
		Admin:    middleware.RequireAdmin(repo),
		Identify: middleware.IdentifyToken(tokens),
	}

	handlers.NewHealthHandler(time.Now()).Register(router)
	handlers.NewAuthHandler(repo, tokens).Register(router, gates)
	handlers.NewItemHandler(repo).Register(router, gates)
	handlers.NewUserHandler(repo).Register(router, gates)
	handlers.NewOrderHandler(repo, repo).Register(router, gates)
	handlers.NewReviewHandler(repo).Register(router, gates)
	handlers.NewPaymentHandler(intents, cfg.PaymentCurrency).Register(router, gates)

	return router
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
