package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// FileRepository stores each version as chapter-NNN.v<k>.txt in one
// directory. The next version number is found by probing filenames from 2
// up, so numbering stays collision-free without a counter, and gaps left by
// externally deleted files are refilled with the lowest free integer.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating version directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) name(chapter, num int) string {
	return fmt.Sprintf("chapter-%03d.v%d.txt", chapter, num)
}

func (r *FileRepository) Create(ctx context.Context, chapter int, text string) (Version, error) {
	num := 2
	for {
		if _, err := os.Stat(filepath.Join(r.dir, r.name(chapter, num))); os.IsNotExist(err) {
			break
		}
		num++
	}

	final := filepath.Join(r.dir, r.name(chapter, num))

	// Write to a temp file and rename so the snapshot either fully exists
	// with final content or not at all.
	tmp, err := os.CreateTemp(r.dir, r.name(chapter, num)+".tmp")
	if err != nil {
		return Version{}, fmt.Errorf("writing version %d for chapter %d: %w", num, chapter, err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Version{}, fmt.Errorf("writing version %d for chapter %d: %w", num, chapter, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Version{}, fmt.Errorf("writing version %d for chapter %d: %w", num, chapter, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return Version{}, fmt.Errorf("writing version %d for chapter %d: %w", num, chapter, err)
	}

	return Version{
		Chapter:   chapter,
		Number:    num,
		Location:  final,
		Text:      text,
		Current:   true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

var versionFileRX = regexp.MustCompile(`^chapter-(\d+)\.v(\d+)\.txt$`)

func (r *FileRepository) ListForChapter(ctx context.Context, chapter int) ([]Version, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	var out []Version
	for _, e := range entries {
		m := versionFileRX.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ch, _ := strconv.Atoi(m[1])
		if ch != chapter {
			continue
		}
		num, _ := strconv.Atoi(m[2])
		v := Version{Chapter: chapter, Number: num, Location: filepath.Join(r.dir, e.Name())}
		if info, err := e.Info(); err == nil {
			v.CreatedAt = info.ModTime().UTC()
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	if len(out) > 0 {
		out[len(out)-1].Current = true
	}
	return out, nil
}

func (r *FileRepository) GetCurrent(ctx context.Context, chapter int) (*Version, error) {
	versions, err := r.ListForChapter(ctx, chapter)
	if err != nil || len(versions) == 0 {
		return nil, err
	}
	v := versions[len(versions)-1]
	data, err := os.ReadFile(v.Location)
	if err != nil {
		return nil, fmt.Errorf("reading version %d for chapter %d: %w", v.Number, chapter, err)
	}
	v.Text = string(data)
	return &v, nil
}
