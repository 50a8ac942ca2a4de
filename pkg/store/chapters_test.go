package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir string, chapters []ChapterInfo) {
	t.Helper()
	b, err := json.Marshal(manifest{Chapters: chapters})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadChapters(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, []ChapterInfo{
		{Number: 2, File: "ch2.txt", Title: "Second"},
		{Number: 1, File: "ch1.txt", Title: "First"},
	})
	if err := os.WriteFile(filepath.Join(dir, "ch1.txt"), []byte("chapter one text"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadChapters(dir)
	if err != nil {
		t.Fatal(err)
	}

	list := c.List()
	if len(list) != 2 || list[0].Number != 1 || list[1].Number != 2 {
		t.Errorf("List = %v, want sorted by number", list)
	}
	if c.Title(1) != "First" {
		t.Errorf("Title(1) = %q", c.Title(1))
	}
	if c.Title(99) != "" {
		t.Errorf("Title(99) = %q, want empty", c.Title(99))
	}

	text, err := c.Read(1)
	if err != nil {
		t.Fatal(err)
	}
	if text != "chapter one text" {
		t.Errorf("Read(1) = %q", text)
	}
	if !c.Exists(1) {
		t.Error("Exists(1) = false")
	}
	// Chapter 2 is in the manifest but its file is missing.
	if c.Exists(2) {
		t.Error("Exists(2) = true for missing file")
	}
}

func TestReadNotFound(t *testing.T) {
	c := NewChapters(t.TempDir(), []ChapterInfo{{Number: 1, File: "gone.txt"}})

	if _, err := c.Read(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(99) err = %v, want ErrNotFound", err)
	}
	// Manifest entry whose file vanished also reads as not found.
	if _, err := c.Read(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(1) err = %v, want ErrNotFound", err)
	}
}

func TestLoadChaptersMissingManifest(t *testing.T) {
	if _, err := LoadChapters(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}
