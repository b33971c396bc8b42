// Package answer provides answer synthesis configuration options.
package answer

import (
	"fmt"
	"time"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options configures LLM answer synthesis.
type Options struct {
	// Enabled toggles answer synthesis. When false, query responses
	// carry matches only.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Timeout bounds a single synthesis call. On expiry the response
	// degrades to matches only.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MinAnswerLength is the minimum rune count for an extracted
	// answer to be considered well formed.
	MinAnswerLength int `json:"min-answer-length" mapstructure:"min-answer-length"`

	// MaxContextRecords caps how many retrieved records are included
	// in the synthesis prompt.
	MaxContextRecords int `json:"max-context-records" mapstructure:"max-context-records"`
}

// NewOptions returns answer options with defaults.
func NewOptions() *Options {
	return &Options{
		Enabled:           true,
		Timeout:           45 * time.Second,
		MinAnswerLength:   10,
		MaxContextRecords: 10,
	}
}

// AddFlags adds flags for answer options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"answer.enabled", o.Enabled, "Enable LLM answer synthesis.")
	fs.DurationVar(&o.Timeout, p+"answer.timeout", o.Timeout, "Timeout for a single synthesis call.")
	fs.IntVar(&o.MinAnswerLength, p+"answer.min-answer-length", o.MinAnswerLength, "Minimum rune count for a well formed answer.")
	fs.IntVar(&o.MaxContextRecords, p+"answer.max-context-records", o.MaxContextRecords, "Maximum records included in the synthesis prompt.")
}

// Validate validates the answer options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Enabled {
		if o.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("answer timeout must be positive"))
		}
		if o.MinAnswerLength < 0 {
			errs = append(errs, fmt.Errorf("min-answer-length must not be negative"))
		}
		if o.MaxContextRecords <= 0 {
			errs = append(errs, fmt.Errorf("max-context-records must be positive"))
		}
	}
	return errs
}
