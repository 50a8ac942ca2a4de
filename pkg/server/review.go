package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"redline/pkg/review"
	"redline/pkg/schema"
	"redline/pkg/store"
)

type reviewReq struct {
	Persona string `json:"persona,omitempty"`
}

// POST /api/review/:num
func (s *Server) handlePostReview(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/review", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	text, err := s.Chapters.Read(num)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "chapter not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed reading chapter")
	}

	ctx := c.Request().Context()
	persona := review.PersonaFor(req.Persona).Name

	// Concurrent review requests for the same chapter and persona share one
	// model call.
	key := fmt.Sprintf("%d:%s", num, persona)
	rev, err, shared := s.reviews.Do(key, func() (*schema.Review, error) {
		r, err := s.Requester.Request(s.Ctx, num, s.Chapters.Title(num), text, persona)
		if err != nil {
			return nil, err
		}
		if err := s.Reviews.Save(r); err != nil {
			return nil, err
		}
		return r, nil
	})
	if shared {
		log.Debug("joined in-flight review", "chapter", num, "persona", persona)
	}
	if err != nil {
		var parseErr *review.ParseError
		if errors.As(err, &parseErr) {
			log.Error("review response unparseable", "chapter", num, "error", parseErr.Err, "excerpt", parseErr.Excerpt)
			return echo.NewHTTPError(http.StatusBadGateway, "model returned unparseable review")
		}
		var upErr *review.UpstreamError
		if errors.As(err, &upErr) {
			log.Error("review inference failed", "chapter", num, "status", upErr.Status, "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "review inference failed")
		}
		log.Error("review failed", "chapter", num, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "review failed")
	}

	if cancelled(ctx) {
		return nil
	}
	return c.JSON(http.StatusOK, rev)
}

// GET /api/review/:num
func (s *Server) handleGetReview(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}
	rev, err := s.Reviews.Load(num)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed loading review")
	}
	if rev == nil {
		return echo.NewHTTPError(http.StatusNotFound, "chapter not reviewed")
	}
	return c.JSON(http.StatusOK, rev)
}

type acceptanceReq struct {
	Accepted schema.Acceptance `json:"accepted"`
}

// POST /api/review/:num/suggestions/:id
func (s *Server) handlePostAcceptance(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "suggestion id is required")
	}

	var req acceptanceReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in acceptance update", "chapter", num, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	rev, err := s.Reviews.UpdateAcceptance(num, id, req.Accepted)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		log.Error("acceptance update failed", "chapter", num, "suggestion", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed updating suggestion")
	}
	return c.JSON(http.StatusOK, rev)
}
