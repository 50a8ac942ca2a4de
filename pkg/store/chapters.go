// Package store persists chapter text and review records as flat files under
// a single data directory. Both stores are read-modify-write with
// last-write-wins semantics; concurrent curators editing the same chapter
// will race. Single-curator-per-chapter is the assumed workflow.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"redline/pkg/utils"
)

// ErrNotFound reports a chapter, review, or suggestion that does not exist.
var ErrNotFound = errors.New("not found")

// ChapterInfo maps a chapter number to its text file and display title. The
// mapping lives in manifest.json next to the text files and is loaded once at
// start, keeping the algorithmic core testable against synthetic sets.
type ChapterInfo struct {
	Number int    `json:"number"`
	File   string `json:"file"`
	Title  string `json:"title"`
}

type manifest struct {
	Chapters []ChapterInfo `json:"chapters"`
}

// Chapters is the manifest-addressed chapter text store.
type Chapters struct {
	dir   string
	byNum map[int]ChapterInfo
}

// LoadChapters reads manifest.json from dir.
func LoadChapters(dir string) (*Chapters, error) {
	m, err := utils.Load[manifest](filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("loading chapter manifest: %w", err)
	}
	byNum := make(map[int]ChapterInfo, len(m.Chapters))
	for _, ch := range m.Chapters {
		byNum[ch.Number] = ch
	}
	return &Chapters{dir: dir, byNum: byNum}, nil
}

// NewChapters builds a store from an explicit chapter set, bypassing the
// manifest file. Tests and tools use this.
func NewChapters(dir string, chapters []ChapterInfo) *Chapters {
	byNum := make(map[int]ChapterInfo, len(chapters))
	for _, ch := range chapters {
		byNum[ch.Number] = ch
	}
	return &Chapters{dir: dir, byNum: byNum}
}

// Dir returns the data directory the store reads from.
func (c *Chapters) Dir() string { return c.dir }

// List returns manifest entries ordered by chapter number.
func (c *Chapters) List() []ChapterInfo {
	out := make([]ChapterInfo, 0, len(c.byNum))
	for _, ch := range c.byNum {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Exists reports whether the chapter is in the manifest and its file is on disk.
func (c *Chapters) Exists(num int) bool {
	ch, ok := c.byNum[num]
	if !ok {
		return false
	}
	return utils.Exists(filepath.Join(c.dir, ch.File))
}

// Title returns the manifest title for a chapter, or "".
func (c *Chapters) Title(num int) string {
	return c.byNum[num].Title
}

// Read returns the chapter's full text, or ErrNotFound.
func (c *Chapters) Read(num int) (string, error) {
	ch, ok := c.byNum[num]
	if !ok {
		return "", fmt.Errorf("chapter %d: %w", num, ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, ch.File))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("chapter %d: %w", num, ErrNotFound)
		}
		return "", fmt.Errorf("reading chapter %d: %w", num, err)
	}
	return string(data), nil
}
