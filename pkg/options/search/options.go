// Package search provides retrieval and ranking configuration options.
package search

import (
	"fmt"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Chunk store backend names accepted by Options.Backend.
const (
	BackendMilvus = "milvus"
	BackendMemory = "memory"
)

// Options configures vector retrieval and ranking behavior.
type Options struct {
	// Backend selects the chunk store implementation, "milvus" or
	// "memory". The memory backend is for local runs and tests.
	Backend string `json:"backend" mapstructure:"backend"`

	// Collection is the vector collection holding record chunks.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimensionality of stored vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// TopK is the number of ranked records returned to the caller.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Oversample multiplies TopK for the raw vector search, leaving
	// headroom for filtering and per-record collapsing.
	Oversample int `json:"oversample" mapstructure:"oversample"`

	// CountLimit caps the candidate set scanned by the total-count
	// pass. It is intentionally much larger than TopK*Oversample so the
	// count reflects the whole relevant set, not just the result page.
	CountLimit int `json:"count-limit" mapstructure:"count-limit"`

	// TargetFieldBoost is applied when a chunk matches the query's
	// target field and contains an extracted entity verbatim.
	TargetFieldBoost float64 `json:"target-field-boost" mapstructure:"target-field-boost"`

	// FieldBoost is applied when an extracted entity appears anywhere
	// in the chunk text.
	FieldBoost float64 `json:"field-boost" mapstructure:"field-boost"`

	// NameThreshold is the minimum similarity counted toward the total
	// for person and project queries.
	NameThreshold float64 `json:"name-threshold" mapstructure:"name-threshold"`

	// GeneralThreshold is the minimum similarity counted toward the
	// total for free-text queries.
	GeneralThreshold float64 `json:"general-threshold" mapstructure:"general-threshold"`

	// FilteredThreshold is the minimum similarity counted toward the
	// total once hard filters already constrain the candidate set.
	FilteredThreshold float64 `json:"filtered-threshold" mapstructure:"filtered-threshold"`
}

// NewOptions returns search options with defaults.
func NewOptions() *Options {
	return &Options{
		Backend:           BackendMilvus,
		Collection:        "request_chunks",
		EmbeddingDim:      768,
		TopK:              20,
		Oversample:        3,
		CountLimit:        1000,
		TargetFieldBoost:  2.0,
		FieldBoost:        1.5,
		NameThreshold:     0.5,
		GeneralThreshold:  0.4,
		FilteredThreshold: 0.2,
	}
}

// AddFlags adds flags for search options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Backend, p+"search.backend", o.Backend, "Chunk store backend, milvus or memory.")
	fs.StringVar(&o.Collection, p+"search.collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.EmbeddingDim, p+"search.embedding-dim", o.EmbeddingDim, "Embedding vector dimensionality.")
	fs.IntVar(&o.TopK, p+"search.top-k", o.TopK, "Number of ranked records to return.")
	fs.IntVar(&o.Oversample, p+"search.oversample", o.Oversample, "Oversampling factor for the raw vector search.")
	fs.IntVar(&o.CountLimit, p+"search.count-limit", o.CountLimit, "Candidate cap for the total-count pass.")
	fs.Float64Var(&o.TargetFieldBoost, p+"search.target-field-boost", o.TargetFieldBoost, "Boost for exact entity matches in the target field.")
	fs.Float64Var(&o.FieldBoost, p+"search.field-boost", o.FieldBoost, "Boost for entity matches anywhere in the chunk.")
	fs.Float64Var(&o.NameThreshold, p+"search.name-threshold", o.NameThreshold, "Similarity threshold for person and project totals.")
	fs.Float64Var(&o.GeneralThreshold, p+"search.general-threshold", o.GeneralThreshold, "Similarity threshold for free-text totals.")
	fs.Float64Var(&o.FilteredThreshold, p+"search.filtered-threshold", o.FilteredThreshold, "Similarity threshold applied after hard filtering.")
}

// Validate validates the search options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Backend != BackendMilvus && o.Backend != BackendMemory {
		errs = append(errs, fmt.Errorf("search backend must be milvus or memory, got %q", o.Backend))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("search collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.Oversample < 1 {
		errs = append(errs, fmt.Errorf("oversample must be at least 1"))
	}
	if o.CountLimit < o.TopK*o.Oversample {
		errs = append(errs, fmt.Errorf("count-limit must be at least top-k * oversample"))
	}
	if o.TargetFieldBoost < o.FieldBoost {
		errs = append(errs, fmt.Errorf("target-field-boost must not be lower than field-boost"))
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"name-threshold", o.NameThreshold},
		{"general-threshold", o.GeneralThreshold},
		{"filtered-threshold", o.FilteredThreshold},
	} {
		if t.value < 0 || t.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1]", t.name))
		}
	}
	return errs
}
