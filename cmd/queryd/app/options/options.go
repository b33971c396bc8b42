// Package options contains flags and options for initializing the query
// server.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	querysvc "github.com/ariel1441/ai-rag-project-sub000/internal/queryd"
	answeropts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/answer"
	cacheopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/cache"
	llmopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/llm"
	logopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/logger"
	milvusopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/milvus"
	searchopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/search"
	httpopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/server/http"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// SearchOptions contains retrieval and ranking configuration.
	SearchOptions *searchopts.Options `json:"search" mapstructure:"search"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// AnswerOptions contains answer synthesis configuration.
	AnswerOptions *answeropts.Options `json:"answer" mapstructure:"answer"`

	// CacheOptions contains query cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8083"

	return &ServerOptions{
		HTTPOptions:      httpOpts,
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		SearchOptions:    searchopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		AnswerOptions:    answeropts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags adds all server flags to the given flagset.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs, "milvus")
	o.SearchOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding")
	o.ChatOptions.AddFlags(fs, "chat")
	o.AnswerOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.MilvusOptions.Complete(); err != nil {
		return fmt.Errorf("milvus: %w", err)
	}
	return o.CacheOptions.Complete()
}

// Validate checks all option groups and returns the combined errors.
func (o *ServerOptions) Validate() error {
	var errs []error
	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.SearchOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.AnswerOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	// Milvus and chat settings only matter when the components that use
	// them are enabled.
	if o.SearchOptions.Backend == searchopts.BackendMilvus {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}
	if o.AnswerOptions.Enabled {
		errs = append(errs, o.ChatOptions.Validate()...)
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}

	return errors.Join(errs...)
}

// Config builds the runtime configuration from the completed options.
func (o *ServerOptions) Config() (*querysvc.Config, error) {
	return &querysvc.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		SearchOptions:    o.SearchOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		AnswerOptions:    o.AnswerOptions,
		CacheOptions:     o.CacheOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
