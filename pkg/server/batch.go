package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"redline/pkg/batch"
	"redline/pkg/utils"
)

// GET /api/review/batch/stream?chapters=1,3,5-9&skip=true&persona=line
//
// Streams batch progress as SSE. Each orchestrator event becomes one SSE
// event named after its type; the terminal event is always "complete". A
// disconnecting client cancels the request context, which stops the run.
func (s *Server) handleBatchStream(c echo.Context) error {
	chapters, err := parseChapterList(c.QueryParam("chapters"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(chapters) == 0 {
		for _, ch := range s.Chapters.List() {
			chapters = append(chapters, ch.Number)
		}
	}
	skip := c.QueryParam("skip") != "false"

	log.Info("starting batch review stream", "chapters", len(chapters), "skip", skip, "persona", c.QueryParam("persona"))
	w := utils.NewSSEWriter(c)
	defer w.Close()

	orch := &batch.Orchestrator{
		Reviewer: s.Requester,
		Chapters: s.Chapters,
		Reviews:  s.Reviews,
		Persona:  c.QueryParam("persona"),
		Pause:    s.BatchPause,
	}

	ctx := c.Request().Context()
	for ev := range orch.Run(ctx, chapters, skip) {
		if err := w.Event(string(ev.Type), ev); err != nil {
			log.Warn("SSE write error during batch review", "error", err)
			break
		}
	}

	if cancelled(ctx) {
		log.Warn("batch review stream aborted after client disconnect")
	}
	return nil
}

// parseChapterList accepts "1,3,5-9" style selections.
func parseChapterList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, err1 := strconv.Atoi(strings.TrimSpace(lo))
			to, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || from <= 0 || to < from {
				return nil, fmt.Errorf("invalid chapter range: %s", part)
			}
			for n := from; n <= to; n++ {
				out = append(out, n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid chapter number: %s", part)
		}
		out = append(out, n)
	}
	return out, nil
}
