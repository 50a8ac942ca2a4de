// Package batch drives reviews across many chapters sequentially, streaming
// progress as it goes. Chapters are processed one at a time on purpose: the
// pacing between calls is what keeps the provider's rate limiter happy.
package batch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"redline/pkg/schema"
)

type EventType string

const (
	EventStart       EventType = "start"
	EventProgress    EventType = "progress"
	EventSkip        EventType = "skip"
	EventChapterDone EventType = "chapter_done"
	EventError       EventType = "error"
	EventComplete    EventType = "complete"
)

// Event is one step of a batch run. The terminal event is always complete
// and carries the summary.
type Event struct {
	Type    EventType `json:"type"`
	Chapter int       `json:"chapter,omitempty"`
	Score   float64   `json:"score,omitempty"`
	Message string    `json:"message,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Summary aggregates a finished run. AverageScore covers done chapters only.
type Summary struct {
	RunID        string  `json:"runId"`
	Total        int     `json:"total"`
	Done         int     `json:"done"`
	Skipped      int     `json:"skipped"`
	Errors       int     `json:"errors"`
	AverageScore float64 `json:"averageScore,omitempty"`
}

// Reviewer runs one chapter review. Satisfied by review.Requester.
type Reviewer interface {
	Request(ctx context.Context, chapterNum int, title, text, persona string) (*schema.Review, error)
}

// ChapterSource provides chapter text. Satisfied by store.Chapters.
type ChapterSource interface {
	Read(num int) (string, error)
	Title(num int) string
}

// ReviewStore persists results. Satisfied by store.Reviews.
type ReviewStore interface {
	Save(rev *schema.Review) error
	Load(num int) (*schema.Review, error)
}

// Orchestrator walks a chapter list through review with skip-if-reviewed
// logic and inter-call pacing.
type Orchestrator struct {
	Reviewer Reviewer
	Chapters ChapterSource
	Reviews  ReviewStore
	Persona  string
	// Pause is inserted between chapters, not after the last one.
	Pause time.Duration
}

// Run processes chapters in order and returns the event stream. The channel
// closes after the complete event. Cancelling ctx stops the run; no further
// events are emitted once the context is done.
func (o *Orchestrator) Run(ctx context.Context, chapters []int, skipExisting bool) <-chan Event {
	events := make(chan Event, 1)
	go o.run(ctx, chapters, skipExisting, events)
	return events
}

func (o *Orchestrator) run(ctx context.Context, chapters []int, skipExisting bool, events chan<- Event) {
	defer close(events)

	runID := ksuid.New().String()
	summary := Summary{RunID: runID, Total: len(chapters)}
	var scoreSum float64

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit(Event{Type: EventStart, Message: runID}) {
		return
	}
	log.Info("batch review started", "run", runID, "chapters", len(chapters), "skipExisting", skipExisting)

	for i, num := range chapters {
		if ctx.Err() != nil {
			log.Warn("batch review cancelled", "run", runID, "chapter", num)
			return
		}
		if !emit(Event{Type: EventProgress, Chapter: num, Message: "reviewing"}) {
			return
		}

		if skipExisting {
			if existing, _ := o.Reviews.Load(num); existing != nil && existing.Score > 0 {
				summary.Skipped++
				log.Debug("chapter already reviewed, skipping", "run", runID, "chapter", num)
				if !emit(Event{Type: EventSkip, Chapter: num, Score: float64(existing.Score)}) {
					return
				}
				continue
			}
		}

		text, err := o.Chapters.Read(num)
		if err != nil {
			summary.Errors++
			log.Error("chapter unreadable during batch review", "run", runID, "chapter", num, "error", err)
			if !emit(Event{Type: EventError, Chapter: num, Message: err.Error()}) {
				return
			}
			continue
		}

		rev, err := o.Reviewer.Request(ctx, num, o.Chapters.Title(num), text, o.Persona)
		if err != nil {
			// One failed chapter never aborts the batch; record and move on.
			summary.Errors++
			log.Error("review failed during batch", "run", runID, "chapter", num, "error", err)
			if !emit(Event{Type: EventError, Chapter: num, Message: err.Error()}) {
				return
			}
			continue
		}

		if err := o.Reviews.Save(rev); err != nil {
			summary.Errors++
			log.Error("failed saving batch review", "run", runID, "chapter", num, "error", err)
			if !emit(Event{Type: EventError, Chapter: num, Message: err.Error()}) {
				return
			}
			continue
		}

		summary.Done++
		scoreSum += float64(rev.Score)
		if !emit(Event{Type: EventChapterDone, Chapter: num, Score: float64(rev.Score)}) {
			return
		}

		if o.Pause > 0 && i < len(chapters)-1 {
			select {
			case <-time.After(o.Pause):
			case <-ctx.Done():
				log.Warn("batch review cancelled during pause", "run", runID)
				return
			}
		}
	}

	if summary.Done > 0 {
		summary.AverageScore = scoreSum / float64(summary.Done)
	}
	log.Info("batch review complete", "run", runID, "done", summary.Done, "skipped", summary.Skipped, "errors", summary.Errors)
	emit(Event{Type: EventComplete, Summary: &summary})
}
