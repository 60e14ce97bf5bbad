package dialogue

import (
	"context"
	"errors"
)

// ErrGraphNotFound is returned by Store implementations when an operation
// targets a graph id that has never been saved.
var ErrGraphNotFound = errors.New("dialogue: graph not found")

// GraphInfo is a listing entry for a persisted graph.
type GraphInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ModifiedAt int64  `json:"modifiedAt"`
}

// Store defines the contract for persisting and retrieving whole dialogue
// graphs. A graph document is saved and loaded as a single unit; there is
// no per-node persistence.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Graphs
	SaveGraph(ctx context.Context, g *Graph) (string, error)
	LoadGraph(ctx context.Context, graphID string) (*Graph, error)
	DeleteGraph(ctx context.Context, graphID string) error
	ListGraphs(ctx context.Context) ([]GraphInfo, error)
}
