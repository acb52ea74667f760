// Package api exposes the dashboard operations over an HTTP JSON API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cryptopulse/cryptopulse/internal/models"
	"github.com/cryptopulse/cryptopulse/internal/service"
)

// DashboardService is the slice of the service layer the handlers
// need, kept as an interface for testing.
type DashboardService interface {
	Snapshot(ctx context.Context, lang models.Language) (*models.MarketSnapshot, error)
	Overview(ctx context.Context) ([]models.MarketQuote, error)
	Coin(ctx context.Context, query string, lang models.Language) (*models.CoinProfile, error)
	Sentiment(ctx context.Context, lang models.Language) (*models.SentimentReport, error)
	Wallet(ctx context.Context, address string, lang models.Language) (*models.WalletAnalysis, error)
	Plan(ctx context.Context, budget float64, lang models.Language) (*models.InvestmentPlan, error)
	Post(ctx context.Context, in service.PostInput) (*models.GeneratedPost, error)
	Chat(ctx context.Context, history []models.ChatMessage, message string, lang models.Language) (string, error)
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Server is the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	dashboard  DashboardService
	config     *ServerConfig
	log        *logrus.Logger
}

// NewServer creates the API server and wires routes and middleware.
func NewServer(config *ServerConfig, dashboard DashboardService, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		router:    mux.NewRouter(),
		dashboard: dashboard,
		config:    config,
		log:       log,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.log))
	s.router.Use(RecoveryMiddleware(s.log))
	s.router.Use(CORSMiddleware)

	rps := s.config.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}
	burst := s.config.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	s.router.Use(RateLimitMiddleware(rps, burst))

	s.setupRoutes()

	writeTimeout := s.config.WriteTimeout
	if writeTimeout <= 0 {
		// Must exceed the gateway's per-call ceiling or responses get
		// cut off mid-generation.
		writeTimeout = 65 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/market/overview", s.handleOverview).Methods(http.MethodGet)
	v1.HandleFunc("/market/coins/{query}", s.handleCoinSearch).Methods(http.MethodGet)
	v1.HandleFunc("/sentiment", s.handleSentiment).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/analyze", s.handleWalletAnalyze).Methods(http.MethodPost)
	v1.HandleFunc("/plans", s.handlePlan).Methods(http.MethodPost)
	v1.HandleFunc("/posts", s.handlePost).Methods(http.MethodPost)
	v1.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("api server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
