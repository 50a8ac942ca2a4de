package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"redline/pkg/acts"
	"redline/pkg/store"
	"redline/pkg/utils"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Redline Review API",
		"status":  "ok",
	})
}

func chapterNum(c echo.Context) (int, error) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid chapter number")
	}
	return num, nil
}

// GET /api/chapters
func (s *Server) handleGetChapters(c echo.Context) error {
	type entry struct {
		Number   int     `json:"number"`
		Title    string  `json:"title"`
		Words    int     `json:"words"`
		Reviewed bool    `json:"reviewed"`
		Score    float64 `json:"score,omitempty"`
	}

	list := s.Chapters.List()
	out := make([]entry, 0, len(list))
	for _, ch := range list {
		e := entry{Number: ch.Number, Title: ch.Title}
		if text, err := s.Chapters.Read(ch.Number); err == nil {
			e.Words = utils.WordCount(text)
		}
		if rev, _ := s.Reviews.Load(ch.Number); rev != nil {
			e.Reviewed = true
			e.Score = float64(rev.Score)
		}
		out = append(out, e)
	}
	return c.JSON(http.StatusOK, map[string]any{"chapters": out})
}

// GET /api/chapters/:num
func (s *Server) handleGetChapter(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}

	text, err := s.Chapters.Read(num)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "chapter not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed reading chapter")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"number": num,
		"title":  s.Chapters.Title(num),
		"words":  utils.WordCount(text),
		"acts":   acts.Segment(text),
		"text":   text,
	})
}
