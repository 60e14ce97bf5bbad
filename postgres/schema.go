package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dialogue_graphs (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    document    JSONB NOT NULL,
    modified_at BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_dialogue_graphs_name ON dialogue_graphs(name);
`

// CreateSchema creates the dialogue_graphs table if it doesn't exist.
func (s *GraphStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the dialogue_graphs table.
func (s *GraphStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS dialogue_graphs CASCADE;`)
	return err
}
