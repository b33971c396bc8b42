// Package model provides shared data models for the request-query service.
package model

import (
	"strconv"
	"time"
)

// Intent classifies what a query is about.
type Intent string

const (
	IntentPerson          Intent = "person"
	IntentProject         Intent = "project"
	IntentType            Intent = "type"
	IntentStatus          Intent = "status"
	IntentGeneral         Intent = "general"
	IntentCount           Intent = "count"
	IntentSimilar         Intent = "similar"
	IntentUrgent          Intent = "urgent"
	IntentAnswerRetrieval Intent = "answer_retrieval"
)

// QueryType classifies what kind of response the query expects.
type QueryType string

const (
	QueryTypeFind      QueryType = "find"
	QueryTypeCount     QueryType = "count"
	QueryTypeSummarize QueryType = "summarize"
	QueryTypeSimilar   QueryType = "similar"
)

// EntityKind identifies the type of an extracted entity value.
type EntityKind string

const (
	EntityPersonName  EntityKind = "person_name"
	EntityProjectName EntityKind = "project_name"
	EntityTypeID      EntityKind = "type_id"
	EntityStatusID    EntityKind = "status_id"
	EntityRecordID    EntityKind = "record_id"
	EntityDateFrom    EntityKind = "date_from"
	EntityDateTo      EntityKind = "date_to"
)

// Entities maps entity kinds to their extracted string values.
type Entities map[EntityKind]string

// Has reports whether the given kind was extracted.
func (e Entities) Has(kind EntityKind) bool {
	_, ok := e[kind]
	return ok
}

// Int returns the value of a numeric entity, or (0, false) when absent
// or not a valid integer.
func (e Entities) Int(kind EntityKind) (int, bool) {
	v, ok := e[kind]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FieldName names an indexed record field.
type FieldName string

const (
	FieldUpdatedBy           FieldName = "updated_by"
	FieldCreatedBy           FieldName = "created_by"
	FieldResponsibleEmployee FieldName = "responsible_employee"
	FieldProjectName         FieldName = "project_name"
	FieldDescription         FieldName = "description"
	FieldTypeID              FieldName = "type_id"
	FieldStatusID            FieldName = "status_id"
)

// ParsedQuery is the immutable output of the entity/intent parser.
type ParsedQuery struct {
	// RawText is the query as received.
	RawText string `json:"raw_text"`
	// Normalized is the lowercased, whitespace-collapsed form used for
	// pattern matching. Script and diacritics are preserved.
	Normalized string `json:"-"`
	// Intent is the classified query intent.
	Intent Intent `json:"intent"`
	// QueryType selects the response shape (find/count/summarize/similar).
	QueryType QueryType `json:"query_type"`
	// Entities holds all extracted entities. Retrieval applies AND
	// semantics across every entry.
	Entities Entities `json:"entities"`
	// TargetFields are the fields the intent implies should carry extra
	// ranking weight, in priority order. Empty for general intent.
	TargetFields []FieldName `json:"target_fields"`
}

// IndexedChunk is one entry of the document index as produced by the
// offline ingestion pipeline. Read-only to this service.
type IndexedChunk struct {
	// RecordID is the business request this chunk belongs to.
	RecordID string
	// ChunkIndex is dense per record: 0..N-1, no gaps.
	ChunkIndex int
	// Text is the chunk content (weighted field combination slice).
	Text string
	// Vector is the embedding of Text.
	Vector []float32
	// SourceFields are the record fields this chunk's text was drawn from.
	SourceFields []FieldName
}

// RankedMatch is a per-record match produced by collapsing all of the
// record's chunks to the single best-scoring one. Transient per query.
type RankedMatch struct {
	RecordID string `json:"record_id"`
	// BestSimilarity is the best chunk similarity in [0, 1].
	BestSimilarity float64 `json:"best_similarity"`
	// Boost is the multiplicative lexical-corroboration factor, >= 1.0.
	Boost float64 `json:"boost"`
	// Score is BestSimilarity * Boost.
	Score float64 `json:"score"`
	// MatchedFields are target fields whose chunks contained an exact
	// entity match.
	MatchedFields []FieldName `json:"matched_fields,omitempty"`
	// ExactMatches counts lexical exact matches across the record's
	// chunks; used as a ranking tiebreaker.
	ExactMatches int `json:"exact_matches"`
}

// RetrievalResult is the outcome of a hybrid retrieval pass.
//
// Invariant: TotalCount >= len(Matches). A violation means the counting
// query is miscalibrated, never the match list.
type RetrievalResult struct {
	Matches []RankedMatch `json:"matches"`
	// TotalCount estimates how many records genuinely match, beyond the
	// returned page.
	TotalCount int `json:"total_count"`
	// Records carries the denormalized record for each matched id, used
	// for answer-context formatting. Not part of the wire response.
	Records map[string]RequestRecord `json:"-"`
}

// RequestRecord is the denormalized view of a business request carried
// alongside index chunks, used for answer context formatting.
type RequestRecord struct {
	RecordID            string     `json:"record_id"`
	ProjectName         string     `json:"project_name,omitempty"`
	CreatedBy           string     `json:"created_by,omitempty"`
	UpdatedBy           string     `json:"updated_by,omitempty"`
	ResponsibleEmployee string     `json:"responsible_employee,omitempty"`
	TypeID              int        `json:"type_id,omitempty"`
	StatusID            int        `json:"status_id,omitempty"`
	Deadline            *time.Time `json:"deadline,omitempty"`
	Description         string     `json:"description,omitempty"`
}

// Timing reports per-stage latency in milliseconds.
type Timing struct {
	RetrievalMs int64 `json:"retrieval"`
	SynthesisMs int64 `json:"synthesis"`
}

// QueryResponse is the wire response of the query endpoint.
type QueryResponse struct {
	Intent     Intent        `json:"intent"`
	QueryType  QueryType     `json:"query_type"`
	Entities   Entities      `json:"entities"`
	Matches    []RankedMatch `json:"matches"`
	TotalCount int           `json:"total_count"`
	// Answer is nil when synthesis was not requested or degraded.
	Answer *string `json:"answer"`
	// Degraded is true when an answer was requested but synthesis failed
	// or timed out; Matches remains fully populated.
	Degraded bool   `json:"degraded,omitempty"`
	Timing   Timing `json:"timing_ms"`
}
