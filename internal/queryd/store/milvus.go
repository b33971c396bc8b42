package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/internal/pkg/textutil"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/component/milvus"
)

// chunkOutputFields are the metadata columns fetched with every search.
var chunkOutputFields = []string{
	"record_id", "chunk_index", "text", "source_fields",
	"project_name", "created_by", "updated_by", "responsible_employee",
	"type_id", "status_id", "deadline", "description",
}

// MilvusStore implements ChunkStore over the Milvus collection written
// by the ingestion pipeline.
type MilvusStore struct {
	client     *milvus.Client
	collection string
}

// NewMilvusStore creates a Milvus-backed chunk store.
func NewMilvusStore(client *milvus.Client, collection string) *MilvusStore {
	return &MilvusStore{client: client, collection: collection}
}

// EnsureCollection creates the chunk collection when it does not exist
// and loads it. Used by local setups; production collections are managed
// by the ingestion pipeline.
func (s *MilvusStore) EnsureCollection(ctx context.Context, dimension int) error {
	schema := &milvus.CollectionSchema{
		Name:        s.collection,
		Description: "business request chunks with per-record metadata",
		Dimension:   dimension,
		MetaFields: []milvus.MetaField{
			{Name: "record_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
			{Name: "text", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
			{Name: "source_fields", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "project_name", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "created_by", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "updated_by", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "responsible_employee", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "type_id", DataType: entity.FieldTypeInt64},
			{Name: "status_id", DataType: entity.FieldTypeInt64},
			{Name: "deadline", DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: "description", DataType: entity.FieldTypeVarChar, MaxLen: 4096},
		},
	}
	if err := s.client.CreateCollection(ctx, schema); err != nil {
		return err
	}
	return s.client.EnsureLoaded(ctx, s.collection)
}

// Search returns the topK nearest chunks.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int) ([]ChunkHit, error) {
	return s.SearchFiltered(ctx, vector, "", topK)
}

// SearchFiltered restricts the search to chunks matching expr.
func (s *MilvusStore) SearchFiltered(ctx context.Context, vector []float32, expr string, topK int) ([]ChunkHit, error) {
	results, err := s.client.SearchWithFilter(ctx, s.collection, vector, expr, topK, chunkOutputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	hits := make([]ChunkHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hitFromResult(r))
	}
	return hits, nil
}

// Count counts distinct records matching expr. Metadata is constant
// across a record's chunks and chunk_index is dense starting at zero,
// so counting the chunk_index == 0 rows counts records.
func (s *MilvusStore) Count(ctx context.Context, expr string) (int64, error) {
	recordExpr := "chunk_index == 0"
	if expr != "" {
		recordExpr = expr + " and " + recordExpr
	}
	n, err := s.client.Count(ctx, s.collection, recordExpr)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Stats returns chunk counts for the collection.
func (s *MilvusStore) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.client.GetCollectionStats(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get index stats: %w", err)
	}
	return &Stats{
		Collection: s.collection,
		ChunkCount: count,
	}, nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func hitFromResult(r milvus.SearchResult) ChunkHit {
	hit := ChunkHit{
		// Milvus returns the raw cosine metric in [-1, 1].
		Similarity: textutil.NormalizeCosineSimilarity(float64(r.Score)),
	}

	if v, ok := r.Metadata["record_id"].(string); ok {
		hit.RecordID = v
		hit.Record.RecordID = v
	}
	if v, ok := r.Metadata["chunk_index"].(int64); ok {
		hit.ChunkIndex = int(v)
	}
	if v, ok := r.Metadata["text"].(string); ok {
		hit.Text = v
	}
	if v, ok := r.Metadata["source_fields"].(string); ok && v != "" {
		for _, f := range strings.Split(v, ",") {
			hit.SourceFields = append(hit.SourceFields, model.FieldName(strings.TrimSpace(f)))
		}
	}
	if v, ok := r.Metadata["project_name"].(string); ok {
		hit.Record.ProjectName = v
	}
	if v, ok := r.Metadata["created_by"].(string); ok {
		hit.Record.CreatedBy = v
	}
	if v, ok := r.Metadata["updated_by"].(string); ok {
		hit.Record.UpdatedBy = v
	}
	if v, ok := r.Metadata["responsible_employee"].(string); ok {
		hit.Record.ResponsibleEmployee = v
	}
	if v, ok := r.Metadata["type_id"].(int64); ok {
		hit.Record.TypeID = int(v)
	}
	if v, ok := r.Metadata["status_id"].(int64); ok {
		hit.Record.StatusID = int(v)
	}
	if v, ok := r.Metadata["deadline"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			hit.Record.Deadline = &t
		}
	}
	if v, ok := r.Metadata["description"].(string); ok {
		hit.Record.Description = v
	}

	return hit
}

var _ ChunkStore = (*MilvusStore)(nil)
