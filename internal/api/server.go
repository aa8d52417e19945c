// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"workforce-intelligence/internal/common/config"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/common/validation"
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/reliability"
	"workforce-intelligence/internal/store"
	"workforce-intelligence/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AnalysisStore persists analyses. *store.AnalysisRepository implements it.
type AnalysisStore interface {
	Save(ctx context.Context, record *models.AnalysisRecord) error
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListRecent(ctx context.Context, jobTitle string, limit int) ([]models.AnalysisRecord, error)
}

// ResultCache reuses analyses for identical inputs. *store.ResultCache implements it.
type ResultCache interface {
	Get(ctx context.Context, input models.AnalysisInput) (*store.CachedAnalysis, error)
	Set(ctx context.Context, input models.AnalysisInput, record *models.AnalysisRecord) error
}

// ReportIndex makes reports searchable. *store.ReportIndex implements it.
type ReportIndex interface {
	Index(ctx context.Context, doc store.ReportDocument) error
	Search(ctx context.Context, text string, size int) (*store.SearchResult, error)
}

// ReportMailer delivers a report. *aws.ReportMailer implements it.
type ReportMailer interface {
	SendReport(ctx context.Context, to, jobTitle, report string) (string, error)
}

// Dependencies wires the server. Every backend is optional and left nil when not configured.
type Dependencies struct {
	Engine      *reliability.Engine
	Store       AnalysisStore
	Cache       ResultCache
	Index       ReportIndex
	Mailer      ReportMailer
	Registry    *registry.ActivityRegistry
	ReadyChecks map[string]func(ctx context.Context) error
	Logger      logger.Logger
	App         config.AppConfig

	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

type Server struct {
	cfg       config.ServerConfig
	deps      Dependencies
	validator *validation.SchemaValidator
	logger    logger.Logger
	router    *gin.Engine
	http      *http.Server
}

func NewServer(cfg config.ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	validator, err := validation.NewSchemaValidator(validation.IntakePayloadSchema)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		deps:      deps,
		validator: validator,
		logger:    logger.ForComponent(deps.Logger, "api"),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.Mode != "" {
		gin.SetMode(s.cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics(), requestLogger(s.logger), bodyLimit(s.cfg.MaxBodyBytes))

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/webhook/intake", func(c *gin.Context) { handle(c, s.intake) })
	r.GET("/analyses", func(c *gin.Context) { handle(c, s.listAnalyses) })
	r.GET("/analyses/:id", func(c *gin.Context) { handle(c, s.getAnalysis) })
	r.GET("/reports/search", func(c *gin.Context) { handle(c, s.searchReports) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":            false,
			"message":            "endpoint not found",
			"availableEndpoints": endpoints,
		})
	})

	return r
}

// Start serves until Shutdown. http.ErrServerClosed is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("intake API listening", map[string]interface{}{"address": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
