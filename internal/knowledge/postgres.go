package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists resolution knowledge in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_entries (
			id TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			resolution TEXT NOT NULL,
			team TEXT NOT NULL DEFAULT '',
			search TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', summary || ' ' || resolution)) STORED,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_entries_search ON knowledge_entries USING GIN (search);`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_entries_created ON knowledge_entries (created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO knowledge_entries (id, summary, resolution, team, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID,
		entry.Summary,
		entry.Resolution,
		entry.Team,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, summary, resolution, team, created_at
		 FROM knowledge_entries
		 WHERE search @@ plainto_tsquery('english', $1)
		 ORDER BY ts_rank(search, plainto_tsquery('english', $1)) DESC, created_at DESC
		 LIMIT $2`,
		query,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Summary, &e.Resolution, &e.Team, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge rows: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
