// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/persistence/sqlite"
)

// SQLiteStore is the default Store backed by modernc SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the catalogue database at path.
func OpenSQLite(path string, cfg sqlite.Config) (*SQLiteStore, error) {
	db, err := sqlite.Open(path, cfg)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// DB exposes the pool for integrity checks.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL CHECK(source_type IN ('direct-link', 'embed', 'link')),
		url TEXT NOT NULL,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'music',
		views INTEGER NOT NULL DEFAULT 0 CHECK(views >= 0),
		likes INTEGER NOT NULL DEFAULT 0 CHECK(likes >= 0),
		user_id TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		user_avatar TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_videos_category_created ON videos(category, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_videos_views ON videos(views DESC);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		user_avatar TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const videoColumns = `id, title, description, source_type, url, thumbnail_url, category,
	views, likes, user_id, username, user_avatar, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanVideo reads a row into the raw shape and maps it once.
func scanVideo(row rowScanner) (video.Record, error) {
	var (
		raw     video.Raw
		created int64
	)
	if err := row.Scan(&raw.ID, &raw.Title, &raw.Description, &raw.SourceType, &raw.URL,
		&raw.ThumbnailURL, &raw.Category, &raw.Views, &raw.Likes, &raw.UserID,
		&raw.Username, &raw.UserAvatar, &created); err != nil {
		return video.Record{}, err
	}
	raw.CreatedAt = time.Unix(0, created).UTC()
	return video.FromRaw(raw), nil
}

// CreateVideo inserts d with a fresh id and zeroed counters.
func (s *SQLiteStore) CreateVideo(ctx context.Context, d video.Draft) (video.Record, error) {
	if err := validateDraft(d); err != nil {
		return video.Record{}, err
	}
	d.Views, d.Likes = 0, 0
	rec := d.Record(uuid.NewString(), nowFunc())
	raw := video.ToRaw(rec)

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO videos (`+videoColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?)`,
		raw.ID, raw.Title, raw.Description, raw.SourceType, raw.URL, raw.ThumbnailURL,
		raw.Category, raw.UserID, raw.Username, raw.UserAvatar, rec.CreatedAt.UnixNano())
	if err != nil {
		return video.Record{}, fmt.Errorf("insert video: %w", err)
	}
	return rec, nil
}

// GetVideo returns the record with id or ErrNotFound.
func (s *SQLiteStore) GetVideo(ctx context.Context, id string) (video.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	rec, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return video.Record{}, ErrNotFound
	}
	if err != nil {
		return video.Record{}, fmt.Errorf("get video: %w", err)
	}
	return rec, nil
}

// ListVideos returns records matching q.
func (s *SQLiteStore) ListVideos(ctx context.Context, q Query) ([]video.Record, error) {
	q = q.Normalized()
	query := `SELECT ` + videoColumns + ` FROM videos WHERE 1=1`
	var args []any
	if q.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(q.Category))
	}
	if q.ExcludeID != "" {
		query += ` AND id <> ?`
		args = append(args, q.ExcludeID)
	}
	if q.Order == OrderMostViewed {
		query += ` ORDER BY views DESC, created_at DESC`
	} else {
		query += ` ORDER BY created_at DESC`
	}
	query += ` LIMIT ?`
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]video.Record, 0, q.Limit)
	for rows.Next() {
		rec, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// IncrementViews adds one view in a single statement.
func (s *SQLiteStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.updateCounter(ctx, `UPDATE videos SET views = views + 1 WHERE id = ? RETURNING views`, id)
}

// AdjustLikes adds delta in a single statement, clamping at zero.
func (s *SQLiteStore) AdjustLikes(ctx context.Context, id string, delta int64) (int64, error) {
	return s.updateCounter(ctx, `UPDATE videos SET likes = MAX(likes + ?, 0) WHERE id = ? RETURNING likes`, delta, id)
}

func (s *SQLiteStore) updateCounter(ctx context.Context, stmt string, args ...any) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update counter: %w", err)
	}
	return n, nil
}

// AddComment stores c against an existing video.
func (s *SQLiteStore) AddComment(ctx context.Context, c video.Comment) (video.Comment, error) {
	c = stampComment(c)
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO comments (id, video_id, user_id, username, user_avatar, text, created_at)
	SELECT ?, id, ?, ?, ?, ?, ? FROM videos WHERE id = ?`,
		c.ID, c.UserID, c.Username, c.UserAvatar, c.Text, c.CreatedAt.UnixNano(), c.VideoID)
	if err != nil {
		return video.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return video.Comment{}, ErrNotFound
	}
	return c, nil
}

// ListComments returns the newest comments first.
func (s *SQLiteStore) ListComments(ctx context.Context, videoID string, limit int) ([]video.Comment, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, video_id, user_id, username, user_avatar, text, created_at
	FROM comments WHERE video_id = ?
	ORDER BY created_at DESC
	LIMIT ?`, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []video.Comment
	for rows.Next() {
		var (
			c       video.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Username, &c.UserAvatar, &c.Text, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func stampComment(c video.Comment) video.Comment {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowFunc()
	}
	return c
}
