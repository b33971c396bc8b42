package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/internal/pkg/textutil"
)

// MemoryStore is an in-memory ChunkStore doing exact cosine scans. It
// backs tests and local development without a Milvus instance.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  []memoryChunk
	records map[string]model.RequestRecord
}

type memoryChunk struct {
	chunk  model.IndexedChunk
	record model.RequestRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.RequestRecord),
	}
}

// Add inserts a chunk together with its record metadata.
func (s *MemoryStore) Add(chunk model.IndexedChunk, record model.RequestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.RecordID = chunk.RecordID
	s.chunks = append(s.chunks, memoryChunk{chunk: chunk, record: record})
	s.records[chunk.RecordID] = record
}

// Search returns the topK nearest chunks by exact cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, topK int) ([]ChunkHit, error) {
	return s.SearchFiltered(ctx, vector, "", topK)
}

// SearchFiltered restricts the scan to chunks matching expr.
func (s *MemoryStore) SearchFiltered(ctx context.Context, vector []float32, expr string, topK int) ([]ChunkHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	match, err := parseFilter(expr)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]ChunkHit, 0, len(s.chunks))
	for _, mc := range s.chunks {
		if !match(mc) {
			continue
		}
		sim := textutil.NormalizeCosineSimilarity(
			textutil.CosineSimilarity(vector, mc.chunk.Vector))
		hits = append(hits, ChunkHit{
			RecordID:     mc.chunk.RecordID,
			ChunkIndex:   mc.chunk.ChunkIndex,
			Text:         mc.chunk.Text,
			SourceFields: mc.chunk.SourceFields,
			Similarity:   sim,
			Record:       mc.record,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].RecordID != hits[j].RecordID {
			return hits[i].RecordID < hits[j].RecordID
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count counts distinct records whose chunks match expr.
func (s *MemoryStore) Count(ctx context.Context, expr string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	match, err := parseFilter(expr)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, mc := range s.chunks {
		if match(mc) {
			seen[mc.chunk.RecordID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

// Stats returns the chunk count.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Stats{
		Collection: "memory",
		ChunkCount: int64(len(s.chunks)),
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// parseFilter compiles the supported expression subset: equality clauses
// over type_id, status_id, record_id and chunk_index joined by "and".
func parseFilter(expr string) (func(memoryChunk) bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return func(memoryChunk) bool { return true }, nil
	}

	clauses := strings.Split(expr, " and ")
	preds := make([]func(memoryChunk) bool, 0, len(clauses))

	for _, clause := range clauses {
		parts := strings.SplitN(clause, "==", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported filter clause: %q", clause)
		}
		field := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch field {
		case "type_id", "status_id", "chunk_index":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid numeric value in clause %q: %w", clause, err)
			}
			f := field
			preds = append(preds, func(mc memoryChunk) bool {
				switch f {
				case "type_id":
					return mc.record.TypeID == n
				case "status_id":
					return mc.record.StatusID == n
				default:
					return mc.chunk.ChunkIndex == n
				}
			})
		case "record_id":
			id := strings.Trim(value, `"'`)
			preds = append(preds, func(mc memoryChunk) bool {
				return mc.chunk.RecordID == id
			})
		default:
			return nil, fmt.Errorf("unsupported filter field: %q", field)
		}
	}

	return func(mc memoryChunk) bool {
		for _, pred := range preds {
			if !pred(mc) {
				return false
			}
		}
		return true
	}, nil
}

var _ ChunkStore = (*MemoryStore)(nil)
