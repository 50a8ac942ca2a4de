package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"redline/pkg/patch"
	"redline/pkg/schema"
	"redline/pkg/store"
	"redline/pkg/utils"
)

type applyReq struct {
	DryRun bool `json:"dryRun,omitempty"`
	// SuggestionIDs restricts the apply to a subset of the accepted
	// suggestions. Empty means all of them.
	SuggestionIDs []string `json:"suggestionIds,omitempty"`
}

// POST /api/apply/:num
//
// Applies the review's accepted suggestions to the chapter's current text and
// persists the result as a new version. Zero applied suggestions is a
// reported outcome (ok:false), not an error status.
func (s *Server) handlePostApply(c echo.Context) error {
	num, err := chapterNum(c)
	if err != nil {
		return err
	}

	var req applyReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	rev, err := s.Reviews.Load(num)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed loading review")
	}
	if rev == nil {
		return echo.NewHTTPError(http.StatusNotFound, "chapter not reviewed")
	}

	accepted := rev.AcceptedSuggestions()
	if len(req.SuggestionIDs) > 0 {
		keep := make(map[string]bool, len(req.SuggestionIDs))
		for _, id := range req.SuggestionIDs {
			keep[id] = true
		}
		filtered := accepted[:0]
		for _, sug := range accepted {
			if keep[sug.ID] {
				filtered = append(filtered, sug)
			}
		}
		accepted = filtered
	}
	if len(accepted) == 0 {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":       false,
			"message":  "no accepted suggestions to apply",
			"applied":  0,
			"skipped":  0,
			"notFound": []string{},
		})
	}

	ctx := c.Request().Context()
	text, err := s.currentText(ctx, num)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "chapter not found")
		}
		log.Error("failed loading chapter text for apply", "chapter", num, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed loading chapter text")
	}

	res := patch.ApplyAccepted(text, accepted)
	logNearMisses(text, accepted, res.NotFound)
	log.Info("patch reconciliation finished", "chapter", num, "applied", res.Applied, "skipped", res.Skipped, "notFound", len(res.NotFound), "dryRun", req.DryRun)

	if res.Applied == 0 {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":       false,
			"message":  "no accepted suggestions could be located in the current text",
			"applied":  0,
			"skipped":  res.Skipped,
			"notFound": res.NotFound,
		})
	}

	if req.DryRun {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"dryRun":   true,
			"applied":  res.Applied,
			"skipped":  res.Skipped,
			"notFound": res.NotFound,
			"newText":  res.NewText,
		})
	}

	v, err := s.Versions.Create(ctx, num, res.NewText)
	if err != nil {
		log.Error("failed writing new version", "chapter", num, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed writing new version")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":       true,
		"applied":  res.Applied,
		"skipped":  res.Skipped,
		"notFound": res.NotFound,
		"version":  v.Number,
		"newFile":  v.Location,
	})
}

// currentText returns the latest version's text when one exists, otherwise
// the original chapter file. A repository error is surfaced, never treated as
// no-versions: patching the original while a newer snapshot is unreachable
// would silently revert its edits.
func (s *Server) currentText(ctx context.Context, num int) (string, error) {
	v, err := s.Versions.GetCurrent(ctx, num)
	if err != nil {
		return "", err
	}
	if v != nil {
		return v.Text, nil
	}
	return s.Chapters.Read(num)
}

// logNearMisses reports, at debug level, the closest paragraph for each
// suggestion that failed to match; the similarity score tells an operator
// whether the source text drifted or the model hallucinated the quote.
func logNearMisses(text string, suggestions []schema.Suggestion, notFound []string) {
	if len(notFound) == 0 {
		return
	}
	missing := make(map[string]bool, len(notFound))
	for _, id := range notFound {
		missing[id] = true
	}
	paragraphs := strings.Split(text, "\n\n")
	for _, sug := range suggestions {
		if !missing[sug.ID] {
			continue
		}
		best := 0.0
		for _, p := range paragraphs {
			if sim := utils.Similarity(sug.Original, p); sim > best {
				best = sim
			}
		}
		log.Debug("suggestion did not match current text", "suggestion", sug.ID, "bestSimilarity", best, "original", utils.LimitStr(sug.Original, 80))
	}
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
