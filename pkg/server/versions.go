package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"redline/pkg/diff"
)

// GET /api/versions/:num
func (s *Server) handleGetVersions(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}
	versions, err := s.Versions.ListForChapter(c.Request().Context(), num)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed listing versions")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"chapter":  num,
		"versions": versions,
	})
}

// GET /api/diff/:num/:id
func (s *Server) handleGetDiff(c echo.Context) error {
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
	sug := rev.FindSuggestion(c.Param("id"))
	if sug == nil {
		return echo.NewHTTPError(http.StatusNotFound, "suggestion not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"chapter":    num,
		"suggestion": sug.ID,
		"deltas":     diff.Words(sug.Original, sug.Suggested),
	})
}
