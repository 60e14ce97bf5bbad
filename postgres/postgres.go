package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// GraphStore implements dialogue.Store using PostgreSQL via pgx. Each
// graph is stored as one JSONB document row.
type GraphStore struct {
	db *pgxpool.Pool
}

// New creates a GraphStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *GraphStore {
	return &GraphStore{db: db}
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return err != nil && err.Error() == "no rows in result set"
}
