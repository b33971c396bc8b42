package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/internal/pkg/textutil"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/store"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/llm"
	searchopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/search"
)

// Retriever executes hybrid retrieval: vector similarity corroborated
// by lexical boosts, conjunctive filtering across entities, per-record
// collapsing and a separate total-count pass.
type Retriever struct {
	store    store.ChunkStore
	embedder llm.EmbeddingProvider
	opts     *searchopts.Options
}

// NewRetriever creates a retriever over the given chunk store and
// embedding provider.
func NewRetriever(chunkStore store.ChunkStore, embedder llm.EmbeddingProvider, opts *searchopts.Options) *Retriever {
	if opts == nil {
		opts = searchopts.NewOptions()
	}
	return &Retriever{
		store:    chunkStore,
		embedder: embedder,
		opts:     opts,
	}
}

// candidate accumulates per-record evidence while collapsing chunks.
type candidate struct {
	recordID      string
	bestSim       float64
	bestScore     float64
	boost         float64
	exactMatches  int
	matchedFields []model.FieldName
}

// Retrieve runs the full retrieval pass. "No match" is not an error;
// a backend failure is, wrapped in ErrRetrievalUnavailable so callers
// can tell the two apart.
func (r *Retriever) Retrieve(ctx context.Context, parsed *model.ParsedQuery, topK int) (*model.RetrievalResult, error) {
	if topK <= 0 {
		topK = r.opts.TopK
	}

	// The query is embedded once per call. Caching across calls is not
	// worth it: embedding is cheap next to the index scan.
	vector, err := r.embedder.EmbedSingle(ctx, parsed.RawText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrievalUnavailable, err)
	}

	expr := r.filterExpr(parsed)
	hits, err := r.store.SearchFiltered(ctx, vector, expr, topK*r.opts.Oversample)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", ErrRetrievalUnavailable, err)
	}

	eligible := r.conjunctiveEligible(parsed, hits)
	ranked := r.collapse(parsed, hits, eligible)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	records := make(map[string]model.RequestRecord, len(ranked))
	for _, m := range ranked {
		for _, hit := range hits {
			if hit.RecordID == m.RecordID {
				records[m.RecordID] = hit.Record
				break
			}
		}
	}

	total, err := r.totalCount(ctx, parsed, vector, expr, ranked)
	if err != nil {
		return nil, err
	}

	logger.Infow("retrieval complete",
		"intent", parsed.Intent,
		"entities", len(parsed.Entities),
		"matches", len(ranked),
		"total", total,
	)

	return &model.RetrievalResult{Matches: ranked, TotalCount: total, Records: records}, nil
}

// filterExpr renders the exact-valued entities into a boolean filter
// expression for the store. Text entities (names) are never filtered
// here; they are handled by boosting and eligibility sets.
func (r *Retriever) filterExpr(parsed *model.ParsedQuery) string {
	var clauses []string
	if v, ok := parsed.Entities.Int(model.EntityTypeID); ok {
		clauses = append(clauses, fmt.Sprintf("type_id == %d", v))
	}
	if v, ok := parsed.Entities.Int(model.EntityStatusID); ok {
		clauses = append(clauses, fmt.Sprintf("status_id == %d", v))
	}
	// For a similarity query the record id is the anchor, not a filter:
	// constraining to it would return only the record itself.
	if id := parsed.Entities[model.EntityRecordID]; id != "" && parsed.Intent != model.IntentSimilar {
		clauses = append(clauses, fmt.Sprintf("record_id == %q", id))
	}
	return strings.Join(clauses, " and ")
}

// similarAnchor returns the record id a similarity query pivots on, or
// empty when the query is not a similarity lookup. The anchor record is
// excluded from results; the caller already has it.
func similarAnchor(parsed *model.ParsedQuery) string {
	if parsed.Intent != model.IntentSimilar {
		return ""
	}
	return parsed.Entities[model.EntityRecordID]
}

// textEntities returns the name-valued entities paired with the fields
// an exact match of each one should be corroborated against.
func (r *Retriever) textEntities(parsed *model.ParsedQuery) map[model.EntityKind]string {
	out := make(map[model.EntityKind]string, 2)
	if v := parsed.Entities[model.EntityPersonName]; v != "" {
		out[model.EntityPersonName] = v
	}
	if v := parsed.Entities[model.EntityProjectName]; v != "" {
		out[model.EntityProjectName] = v
	}
	return out
}

// filterEntityCount counts the entities that constrain retrieval.
// Date-range entities only shape synthesis, not filtering.
func filterEntityCount(parsed *model.ParsedQuery) int {
	n := 0
	for _, kind := range []model.EntityKind{
		model.EntityPersonName,
		model.EntityProjectName,
		model.EntityTypeID,
		model.EntityStatusID,
		model.EntityRecordID,
	} {
		if parsed.Entities.Has(kind) {
			n++
		}
	}
	return n
}

// conjunctiveEligible computes the AND-semantics record set. With two
// or more constraining entities, each text entity contributes the set
// of records that contain it verbatim in some chunk, and the sets are
// intersected. Exact-valued entities are already enforced by the
// filter expression, so every hit satisfies them. A nil return means
// no conjunctive constraint applies.
func (r *Retriever) conjunctiveEligible(parsed *model.ParsedQuery, hits []store.ChunkHit) map[string]bool {
	if filterEntityCount(parsed) < 2 {
		return nil
	}

	texts := r.textEntities(parsed)
	if len(texts) == 0 {
		return nil
	}

	var eligible map[string]bool
	for _, value := range texts {
		set := make(map[string]bool)
		for _, hit := range hits {
			if textutil.ContainsFold(hit.Text, value) || recordFieldContains(hit.Record, value) {
				set[hit.RecordID] = true
			}
		}
		if eligible == nil {
			eligible = set
			continue
		}
		for id := range eligible {
			if !set[id] {
				delete(eligible, id)
			}
		}
	}
	return eligible
}

// recordFieldContains checks entity presence against the record
// metadata carried with the chunk, covering values that fell outside
// this particular chunk's text slice.
func recordFieldContains(rec model.RequestRecord, value string) bool {
	for _, field := range []string{
		rec.ProjectName, rec.CreatedBy, rec.UpdatedBy, rec.ResponsibleEmployee,
	} {
		if textutil.ContainsFold(field, value) {
			return true
		}
	}
	return false
}

// chunkBoost scores one chunk's lexical corroboration: the target-field
// boost when a target field carried the entity verbatim, the smaller
// anywhere boost for a verbatim match outside target fields, 1.0 for a
// pure semantic match. Returns the boost, the exact-match count and the
// target fields that matched.
func (r *Retriever) chunkBoost(parsed *model.ParsedQuery, hit store.ChunkHit) (float64, int, []model.FieldName) {
	boost := 1.0
	exact := 0
	var matched []model.FieldName

	var targetSources []model.FieldName
	for _, sf := range hit.SourceFields {
		for _, tf := range parsed.TargetFields {
			if sf == tf {
				targetSources = append(targetSources, sf)
				break
			}
		}
	}

	for _, value := range r.textEntities(parsed) {
		if !textutil.ContainsFold(hit.Text, value) {
			continue
		}
		exact++
		if len(targetSources) > 0 {
			boost = max(boost, r.opts.TargetFieldBoost)
			matched = append(matched, targetSources...)
		} else {
			boost = max(boost, r.opts.FieldBoost)
		}
	}

	return boost, exact, matched
}

// collapse folds chunk hits into one RankedMatch per record, keeping
// the best similarity*boost, and sorts: score descending, then more
// exact matches, then record id ascending for determinism.
func (r *Retriever) collapse(parsed *model.ParsedQuery, hits []store.ChunkHit, eligible map[string]bool) []model.RankedMatch {
	byRecord := make(map[string]*candidate)
	var order []string

	anchor := similarAnchor(parsed)
	for _, hit := range hits {
		if anchor != "" && hit.RecordID == anchor {
			continue
		}
		if eligible != nil && !eligible[hit.RecordID] {
			continue
		}

		boost, exact, matched := r.chunkBoost(parsed, hit)
		score := hit.Similarity * boost

		c, ok := byRecord[hit.RecordID]
		if !ok {
			c = &candidate{recordID: hit.RecordID, boost: 1.0}
			byRecord[hit.RecordID] = c
			order = append(order, hit.RecordID)
		}
		c.exactMatches += exact
		c.matchedFields = appendUniqueFields(c.matchedFields, matched)
		if score > c.bestScore {
			c.bestScore = score
			c.bestSim = hit.Similarity
			c.boost = boost
		}
	}

	matches := make([]model.RankedMatch, 0, len(byRecord))
	for _, id := range order {
		c := byRecord[id]
		matches = append(matches, model.RankedMatch{
			RecordID:       c.recordID,
			BestSimilarity: c.bestSim,
			Boost:          c.boost,
			Score:          c.bestScore,
			MatchedFields:  c.matchedFields,
			ExactMatches:   c.exactMatches,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].ExactMatches != matches[j].ExactMatches {
			return matches[i].ExactMatches > matches[j].ExactMatches
		}
		return matches[i].RecordID < matches[j].RecordID
	})

	return matches
}

// totalCount estimates how many records genuinely match, beyond the
// returned page.
//
// Exact-only queries (type/status/record-id filters, no name entity)
// count directly against the store with no similarity floor. Everything
// else re-runs the eligibility logic over a much wider candidate set
// with a threshold keyed to the query shape, then unions in the
// returned page so TotalCount >= len(matches) holds structurally.
func (r *Retriever) totalCount(ctx context.Context, parsed *model.ParsedQuery, vector []float32, expr string, page []model.RankedMatch) (int, error) {
	texts := r.textEntities(parsed)

	if len(texts) == 0 && expr != "" {
		n, err := r.store.Count(ctx, expr)
		if err != nil {
			return 0, fmt.Errorf("%w: count: %v", ErrRetrievalUnavailable, err)
		}
		return int(n), nil
	}

	threshold := r.countThreshold(parsed, expr)

	hits, err := r.store.SearchFiltered(ctx, vector, expr, r.opts.CountLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: count search: %v", ErrRetrievalUnavailable, err)
	}

	eligible := r.conjunctiveEligible(parsed, hits)
	anchor := similarAnchor(parsed)
	counted := make(map[string]bool)
	for _, hit := range hits {
		if anchor != "" && hit.RecordID == anchor {
			continue
		}
		if eligible != nil && !eligible[hit.RecordID] {
			continue
		}
		_, exact, _ := r.chunkBoost(parsed, hit)
		if exact > 0 || hit.Similarity >= threshold {
			counted[hit.RecordID] = true
		}
	}
	for _, m := range page {
		counted[m.RecordID] = true
	}
	return len(counted), nil
}

// countThreshold selects the similarity floor for threshold counting:
// a hard filter already narrows the set, name/project lookups need a
// strict floor, free-text queries a moderate one.
func (r *Retriever) countThreshold(parsed *model.ParsedQuery, expr string) float64 {
	if expr != "" {
		return r.opts.FilteredThreshold
	}
	switch parsed.Intent {
	case model.IntentPerson, model.IntentProject:
		return r.opts.NameThreshold
	}
	if parsed.Entities.Has(model.EntityPersonName) || parsed.Entities.Has(model.EntityProjectName) {
		return r.opts.NameThreshold
	}
	return r.opts.GeneralThreshold
}

func appendUniqueFields(dst []model.FieldName, add []model.FieldName) []model.FieldName {
	for _, f := range add {
		found := false
		for _, d := range dst {
			if d == f {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, f)
		}
	}
	return dst
}
