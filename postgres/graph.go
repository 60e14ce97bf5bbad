package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/dialogue"
)

// SaveGraph upserts a graph document keyed by its id. A graph loaded from
// an external document without an id gets an auto-generated UUID.
// Returns the graph ID (generated or existing).
func (s *GraphStore) SaveGraph(ctx context.Context, g *dialogue.Graph) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	doc, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("dialogue: serialize graph: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO dialogue_graphs (id, name, document, modified_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     document = EXCLUDED.document,
		     modified_at = EXCLUDED.modified_at,
		     updated_at = NOW()`,
		g.ID, g.Name, doc, g.ModifiedAt,
	)
	if err != nil {
		return "", fmt.Errorf("dialogue: save graph: %w", err)
	}

	return g.ID, nil
}

// LoadGraph fetches a graph document by its ID.
// Returns nil, nil if not found.
func (s *GraphStore) LoadGraph(ctx context.Context, graphID string) (*dialogue.Graph, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT document FROM dialogue_graphs WHERE id = $1`, graphID,
	).Scan(&doc)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("dialogue: load graph: %w", err)
	}

	var g dialogue.Graph
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("dialogue: parse graph document: %w", err)
	}

	return &g, nil
}

// DeleteGraph deletes a graph document by its ID.
// Returns ErrGraphNotFound if the graph doesn't exist.
func (s *GraphStore) DeleteGraph(ctx context.Context, graphID string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM dialogue_graphs WHERE id = $1`, graphID)
	if err != nil {
		return fmt.Errorf("dialogue: delete graph: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return dialogue.ErrGraphNotFound
	}
	return nil
}

// ListGraphs returns id, name, and modification time for every stored
// graph, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *GraphStore) ListGraphs(ctx context.Context) ([]dialogue.GraphInfo, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, modified_at FROM dialogue_graphs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("dialogue: list graphs: %w", err)
	}
	defer rows.Close()

	infos := []dialogue.GraphInfo{}
	for rows.Next() {
		var info dialogue.GraphInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.ModifiedAt); err != nil {
			return nil, fmt.Errorf("dialogue: scan graph info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialogue: rows graphs: %w", err)
	}

	return infos, nil
}
