package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"redline/pkg/schema"
)

type fakeReviewer struct {
	failOn map[int]bool
	scores map[int]float64
	calls  []int
}

func (f *fakeReviewer) Request(ctx context.Context, num int, title, text, persona string) (*schema.Review, error) {
	f.calls = append(f.calls, num)
	if f.failOn[num] {
		return nil, errors.New("model unavailable")
	}
	score := f.scores[num]
	if score == 0 {
		score = 7
	}
	return &schema.Review{ChapterNum: num, Score: schema.Score(score), Status: "reviewed"}, nil
}

type fakeChapters struct {
	missing map[int]bool
}

func (f *fakeChapters) Read(num int) (string, error) {
	if f.missing[num] {
		return "", fmt.Errorf("chapter %d: not found", num)
	}
	return fmt.Sprintf("text of chapter %d", num), nil
}

func (f *fakeChapters) Title(num int) string { return fmt.Sprintf("Chapter %d", num) }

type fakeReviews struct {
	saved    map[int]*schema.Review
	existing map[int]*schema.Review
	failSave bool
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{saved: map[int]*schema.Review{}, existing: map[int]*schema.Review{}}
}

func (f *fakeReviews) Save(rev *schema.Review) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.saved[rev.ChapterNum] = rev
	return nil
}

func (f *fakeReviews) Load(num int) (*schema.Review, error) {
	return f.existing[num], nil
}

func collect(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func byType(events []Event, t EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func TestRunHappyPath(t *testing.T) {
	rev := &fakeReviewer{scores: map[int]float64{1: 6, 2: 8}}
	reviews := newFakeReviews()
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: reviews}

	events := collect(o.Run(context.Background(), []int{1, 2}, true))

	if events[0].Type != EventStart {
		t.Errorf("first event = %s, want start", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventComplete || last.Summary == nil {
		t.Fatalf("last event = %+v, want complete with summary", last)
	}
	if last.Summary.Done != 2 || last.Summary.Errors != 0 || last.Summary.Skipped != 0 {
		t.Errorf("summary = %+v", last.Summary)
	}
	if last.Summary.AverageScore != 7 {
		t.Errorf("average = %v, want 7", last.Summary.AverageScore)
	}
	if last.Summary.RunID == "" {
		t.Error("summary missing run id")
	}
	if len(reviews.saved) != 2 {
		t.Errorf("saved %d reviews, want 2", len(reviews.saved))
	}
}

func TestRunIsolatesChapterFailure(t *testing.T) {
	rev := &fakeReviewer{failOn: map[int]bool{2: true}}
	reviews := newFakeReviews()
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: reviews}

	events := collect(o.Run(context.Background(), []int{1, 2, 3}, true))

	last := events[len(events)-1]
	if last.Type != EventComplete {
		t.Fatalf("last event = %s", last.Type)
	}
	if last.Summary.Done != 2 || last.Summary.Errors != 1 {
		t.Errorf("summary = %+v, want done 2 errors 1", last.Summary)
	}

	errs := byType(events, EventError)
	if len(errs) != 1 || errs[0].Chapter != 2 {
		t.Errorf("error events = %v", errs)
	}
	// Chapter 3 still ran after chapter 2 failed.
	done := byType(events, EventChapterDone)
	if len(done) != 2 || done[1].Chapter != 3 {
		t.Errorf("done events = %v", done)
	}
}

func TestRunSkipsReviewedChapters(t *testing.T) {
	rev := &fakeReviewer{}
	reviews := newFakeReviews()
	reviews.existing[1] = &schema.Review{ChapterNum: 1, Score: 9}
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: reviews}

	events := collect(o.Run(context.Background(), []int{1, 2}, true))

	skips := byType(events, EventSkip)
	if len(skips) != 1 || skips[0].Chapter != 1 || skips[0].Score != 9 {
		t.Errorf("skip events = %v", skips)
	}
	if len(rev.calls) != 1 || rev.calls[0] != 2 {
		t.Errorf("reviewer calls = %v, want [2]", rev.calls)
	}
	last := events[len(events)-1]
	if last.Summary.Skipped != 1 || last.Summary.Done != 1 {
		t.Errorf("summary = %+v", last.Summary)
	}
}

func TestRunSkipDisabled(t *testing.T) {
	rev := &fakeReviewer{}
	reviews := newFakeReviews()
	reviews.existing[1] = &schema.Review{ChapterNum: 1, Score: 9}
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: reviews}

	events := collect(o.Run(context.Background(), []int{1}, false))

	if len(byType(events, EventSkip)) != 0 {
		t.Error("skip emitted with skipExisting=false")
	}
	if len(rev.calls) != 1 {
		t.Errorf("reviewer calls = %v, want [1]", rev.calls)
	}
}

func TestRunUnreadableChapter(t *testing.T) {
	rev := &fakeReviewer{}
	reviews := newFakeReviews()
	o := &Orchestrator{
		Reviewer: rev,
		Chapters: &fakeChapters{missing: map[int]bool{1: true}},
		Reviews:  reviews,
	}

	events := collect(o.Run(context.Background(), []int{1}, true))

	last := events[len(events)-1]
	if last.Summary.Errors != 1 || last.Summary.Done != 0 {
		t.Errorf("summary = %+v", last.Summary)
	}
	if len(rev.calls) != 0 {
		t.Errorf("reviewer called for unreadable chapter: %v", rev.calls)
	}
}

func TestRunSaveFailureCounts(t *testing.T) {
	rev := &fakeReviewer{}
	reviews := newFakeReviews()
	reviews.failSave = true
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: reviews}

	events := collect(o.Run(context.Background(), []int{1}, true))

	last := events[len(events)-1]
	if last.Summary.Errors != 1 || last.Summary.Done != 0 {
		t.Errorf("summary = %+v", last.Summary)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rev := &fakeReviewer{}
	o := &Orchestrator{Reviewer: rev, Chapters: &fakeChapters{}, Reviews: newFakeReviews()}

	ch := o.Run(ctx, []int{1, 2, 3, 4, 5}, true)
	// Consume the start event, then cancel mid-run.
	<-ch
	cancel()

	events := collect(ch)
	for _, ev := range events {
		if ev.Type == EventComplete {
			t.Error("complete event emitted after cancellation")
		}
	}
	if len(rev.calls) == 5 {
		t.Error("run did not stop early")
	}
}
