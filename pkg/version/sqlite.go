package version

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;

CREATE TABLE IF NOT EXISTS chapter_versions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  chapter INTEGER NOT NULL,
  version INTEGER NOT NULL,
  content TEXT NOT NULL,
  is_current INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  UNIQUE(chapter, version)
);

CREATE INDEX IF NOT EXISTS idx_chapter_versions_chapter
  ON chapter_versions(chapter, version);
`

// SQLiteRepository stores versions as rows with an is_current flag. At most
// one row per chapter is current; the old flag is cleared in the same
// transaction that inserts the new row.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening version database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing version schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error { return r.db.Close() }

// withTx executes fn in a DB transaction, committing on nil error and rolling
// back otherwise.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) Create(ctx context.Context, chapter int, text string) (Version, error) {
	now := time.Now().UTC()
	var num int

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		// Probe for the lowest free version number >= 2. Numbers are never
		// reused while their row exists, even across failed attempts.
		rows, err := tx.QueryContext(ctx, `SELECT version FROM chapter_versions WHERE chapter=?`, chapter)
		if err != nil {
			return err
		}
		taken := make(map[int]bool)
		for rows.Next() {
			var v int
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return err
			}
			taken[v] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		num = 2
		for taken[num] {
			num++
		}

		if _, err := tx.ExecContext(ctx, `UPDATE chapter_versions SET is_current=0 WHERE chapter=? AND is_current=1`, chapter); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chapter_versions(chapter, version, content, is_current, created_at)
			VALUES(?,?,?,1,?)
		`, chapter, num, text, now.Format(time.RFC3339))
		return err
	})
	if err != nil {
		return Version{}, fmt.Errorf("writing version for chapter %d: %w", chapter, err)
	}

	return Version{
		Chapter:   chapter,
		Number:    num,
		Location:  fmt.Sprintf("db:chapter_versions/%d/v%d", chapter, num),
		Text:      text,
		Current:   true,
		CreatedAt: now,
	}, nil
}

func (r *SQLiteRepository) ListForChapter(ctx context.Context, chapter int) ([]Version, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT version, is_current, created_at FROM chapter_versions
		WHERE chapter=? ORDER BY version
	`, chapter)
	if err != nil {
		return nil, fmt.Errorf("listing versions for chapter %d: %w", chapter, err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var current int
		var created string
		if err := rows.Scan(&v.Number, &current, &created); err != nil {
			return nil, err
		}
		v.Chapter = chapter
		v.Current = current == 1
		v.Location = fmt.Sprintf("db:chapter_versions/%d/v%d", chapter, v.Number)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			v.CreatedAt = t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCurrent(ctx context.Context, chapter int) (*Version, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT version, content, created_at FROM chapter_versions
		WHERE chapter=? AND is_current=1 LIMIT 1
	`, chapter)

	var v Version
	var created string
	if err := row.Scan(&v.Number, &v.Text, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("loading current version for chapter %d: %w", chapter, err)
	}
	v.Chapter = chapter
	v.Current = true
	v.Location = fmt.Sprintf("db:chapter_versions/%d/v%d", chapter, v.Number)
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		v.CreatedAt = t
	}
	return &v, nil
}
