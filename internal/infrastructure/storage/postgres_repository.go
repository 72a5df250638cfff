package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"hndigest/internal/domain"
	"hndigest/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists processed stories for deduplication/audit.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.StoryRepository = (*PostgresRepository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AlreadyProcessed returns a map with IDs that already exist in storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, ids []int) (map[int]bool, error) {
	result := make(map[int]bool)
	if r.db == nil || len(ids) == 0 {
		return result, nil
	}

	query, args, err := psql.
		Select("story_id").
		From("processed_stories").
		Where(sq.Eq{"story_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveProcessed upserts the processed story snapshot.
func (r *PostgresRepository) SaveProcessed(ctx context.Context, story domain.ProcessedStory) error {
	if r.db == nil {
		return nil
	}

	query, args, err := psql.
		Insert("processed_stories").
		Columns("story_id", "title", "url", "summary", "combined_score", "status").
		Values(story.Story.ID, story.Story.Title, story.Story.URL, story.Summary, story.CombinedScore, story.Status).
		Suffix(`ON CONFLICT (story_id) DO UPDATE
                SET summary = EXCLUDED.summary,
                    combined_score = EXCLUDED.combined_score,
                    status = EXCLUDED.status,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}
