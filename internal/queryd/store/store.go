// Package store provides the chunk index access layer for the query
// service. The index itself is written by an offline ingestion pipeline;
// this service only reads it.
package store

import (
	"context"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
)

// ChunkHit is a single ANN hit with the record metadata carried per
// chunk.
type ChunkHit struct {
	// RecordID is the business request the chunk belongs to.
	RecordID string
	// ChunkIndex is dense per record, 0..N-1.
	ChunkIndex int
	// Text is the chunk content.
	Text string
	// SourceFields are the record fields the chunk text was drawn from.
	SourceFields []model.FieldName
	// Similarity is the cosine similarity mapped into [0, 1].
	Similarity float64
	// Record is the denormalized request view stored alongside the chunk.
	Record model.RequestRecord
}

// Stats describes the state of the chunk index.
type Stats struct {
	Collection string `json:"collection"`
	ChunkCount int64  `json:"chunk_count"`
}

// ChunkStore reads the chunk index.
//
// Filter expressions are conjunctions of equality clauses over the
// metadata fields, e.g. `type_id == 4 and status_id == 2` or
// `record_id == "10042"`.
type ChunkStore interface {
	// Search returns the topK nearest chunks to the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]ChunkHit, error)

	// SearchFiltered restricts the nearest-neighbor search to chunks
	// matching expr. An empty expr behaves like Search.
	SearchFiltered(ctx context.Context, vector []float32, expr string, topK int) ([]ChunkHit, error)

	// Count returns the number of distinct records whose chunks match
	// expr. An empty expr counts all records.
	Count(ctx context.Context, expr string) (int64, error)

	// Stats returns index statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
