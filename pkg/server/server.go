package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"redline/pkg/flight"
	"redline/pkg/review"
	"redline/pkg/schema"
	"redline/pkg/store"
	"redline/pkg/version"
)

type Server struct {
	Echo      *echo.Echo
	Requester *review.Requester
	Chapters  *store.Chapters
	Reviews   *store.Reviews
	Versions  version.Repository
	Ctx       context.Context

	// BatchPause spaces out LLM calls during batch review.
	BatchPause time.Duration

	reviews *flight.Group[string, *schema.Review]
}

func NewServer(ctx context.Context, requester *review.Requester, chapters *store.Chapters, reviews *store.Reviews, versions version.Repository) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:       e,
		Requester:  requester,
		Chapters:   chapters,
		Reviews:    reviews,
		Versions:   versions,
		Ctx:        ctx,
		BatchPause: 2 * time.Second,
		reviews:    flight.NewGroup[string, *schema.Review](),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.GET("/chapters", s.handleGetChapters)
	api.GET("/chapters/:num", s.handleGetChapter)

	api.POST("/review/:num", s.handlePostReview)
	api.GET("/review/:num", s.handleGetReview)
	api.POST("/review/:num/suggestions/:id", s.handlePostAcceptance)
	api.GET("/review/batch/stream", s.handleBatchStream)

	api.POST("/apply/:num", s.handlePostApply)
	api.GET("/versions/:num", s.handleGetVersions)
	api.GET("/diff/:num/:id", s.handleGetDiff)
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
