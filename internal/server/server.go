// Package server is the HTTP adapter over the progression and review
// services.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/review"
)

// Progression is the part of the progression service the API exposes.
type Progression interface {
	Summary(ctx context.Context, userID string) (progression.Summary, error)
	RecordActivity(ctx context.Context, userID string, at time.Time) (progression.ActivityResult, error)
	Award(ctx context.Context, userID string, amount int, source progression.Source, description string) (progression.AwardResult, error)
	Catalog() *progression.Catalog
}

// Reviews is the part of the review service the API exposes.
type Reviews interface {
	Submit(ctx context.Context, sub review.Submission) (review.Outcome, error)
	SubmitTimed(ctx context.Context, ts review.TimedSubmission) (review.Outcome, error)
	Due(ctx context.Context, userID string, deck content.Deck, now time.Time) ([]string, error)
	Statuses(ctx context.Context, userID string, deck content.Deck) (review.DeckStatus, error)
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	// ServiceName names the spans created for requests.
	ServiceName string
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *logger.Logger
}

func New(cfg Config, prog Progression, reviews Reviews, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "studyhall"
	}
	engine := newRouter(cfg, &handlers{prog: prog, reviews: reviews, now: time.Now}, log)
	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

func newRouter(cfg Config, h *handlers, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		requestID(),
		requestLogger(log),
		corsMiddleware(cfg.AllowedOrigins),
	)

	router.GET("/healthz", h.health)

	v1 := router.Group("/v1")
	v1.GET("/badges", h.badges)

	users := v1.Group("/users/:user")
	users.GET("/progress", h.progress)
	users.POST("/activity", h.activity)
	users.POST("/xp", h.award)
	users.POST("/reviews", h.submitReview)
	users.POST("/due", h.due)

	return router
}
