package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavnoorsra/pswhiteboard/models"
)

const segmentsSchema = `
CREATE TABLE IF NOT EXISTS whiteboard_segments (
	id         BIGSERIAL PRIMARY KEY,
	page_id    TEXT NOT NULL,
	segment_id TEXT NOT NULL,
	x0         DOUBLE PRECISION NOT NULL,
	y0         DOUBLE PRECISION NOT NULL,
	x1         DOUBLE PRECISION NOT NULL,
	y1         DOUBLE PRECISION NOT NULL,
	color      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_page ON whiteboard_segments (page_id);
`

// PostgresStore persists segments in PostgreSQL through a pgx pool. The serial
// primary key preserves insertion order for List and DeleteLast.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func ConnectPostgres(url string) (*PostgresStore, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, segmentsSchema); err != nil {
		return nil, fmt.Errorf("create segments table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Put(pageID, segmentID string, seg models.StrokeSegment) error {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO whiteboard_segments (page_id, segment_id, x0, y0, x1, y1, color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pageID, segmentID, seg.X0, seg.Y0, seg.X1, seg.Y1, seg.Color)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) DeleteLast(pageID string) (models.StrokeSegment, error) {
	var seg models.StrokeSegment
	err := s.pool.QueryRow(context.Background(),
		`DELETE FROM whiteboard_segments
		 WHERE id = (SELECT id FROM whiteboard_segments WHERE page_id = $1 ORDER BY id DESC LIMIT 1)
		 RETURNING segment_id, x0, y0, x1, y1, color`,
		pageID).Scan(&seg.ID, &seg.X0, &seg.Y0, &seg.X1, &seg.Y1, &seg.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StrokeSegment{}, ErrNotFound
	}
	if err != nil {
		return models.StrokeSegment{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return seg, nil
}

func (s *PostgresStore) DeleteAll(pageID string) error {
	_, err := s.pool.Exec(context.Background(),
		`DELETE FROM whiteboard_segments WHERE page_id = $1`, pageID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) List(pageID string) ([]models.StrokeSegment, error) {
	rows, err := s.pool.Query(context.Background(),
		`SELECT segment_id, x0, y0, x1, y1, color
		 FROM whiteboard_segments WHERE page_id = $1 ORDER BY id ASC`,
		pageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var segs []models.StrokeSegment
	for rows.Next() {
		var seg models.StrokeSegment
		if err := rows.Scan(&seg.ID, &seg.X0, &seg.Y0, &seg.X1, &seg.Y1, &seg.Color); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return segs, nil
}
