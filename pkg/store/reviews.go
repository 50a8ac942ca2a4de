package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"redline/pkg/schema"
	"redline/pkg/utils"
)

// Reviews stores one current review per chapter. A later save replaces the
// earlier review; history lives at the version layer, not here.
type Reviews struct {
	dir string
}

func NewReviews(dir string) *Reviews {
	return &Reviews{dir: dir}
}

func (r *Reviews) path(num int) string {
	return filepath.Join(r.dir, fmt.Sprintf("chapter-%03d.review.json", num))
}

// Save persists the review keyed by its chapter number.
func (r *Reviews) Save(rev *schema.Review) error {
	if rev == nil || rev.ChapterNum <= 0 {
		return errors.New("review missing chapter number")
	}
	if err := utils.Save(r.path(rev.ChapterNum), rev); err != nil {
		return fmt.Errorf("saving review for chapter %d: %w", rev.ChapterNum, err)
	}
	return nil
}

// Load returns the stored review for a chapter, or nil when the chapter has
// not been reviewed. Corrupted review files are treated as not-reviewed and
// logged; they must never crash a caller.
func (r *Reviews) Load(num int) (*schema.Review, error) {
	rev, err := utils.Load[*schema.Review](r.path(num))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		log.Error("unreadable review file, treating chapter as unreviewed", "chapter", num, "error", err)
		return nil, nil
	}
	return rev, nil
}

// UpdateAcceptance sets one suggestion's acceptance state and writes the
// whole review back. Load-modify-save, last write wins.
func (r *Reviews) UpdateAcceptance(num int, suggestionID string, state schema.Acceptance) (*schema.Review, error) {
	rev, err := r.Load(num)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, fmt.Errorf("review for chapter %d: %w", num, ErrNotFound)
	}
	s := rev.FindSuggestion(suggestionID)
	if s == nil {
		return nil, fmt.Errorf("suggestion %q in chapter %d: %w", suggestionID, num, ErrNotFound)
	}
	s.Accepted = state
	if err := r.Save(rev); err != nil {
		return nil, err
	}
	log.Info("suggestion updated", "chapter", num, "suggestion", suggestionID, "state", state.String())
	return rev, nil
}
