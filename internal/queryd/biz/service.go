package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/metrics"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/store"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/pool"
)

// Mode selects the response shape of a query request.
type Mode string

const (
	// ModeSearchOnly parses and retrieves without synthesis.
	ModeSearchOnly Mode = "search_only"
	// ModeRetrievalOnly is an accepted alias for ModeSearchOnly.
	ModeRetrievalOnly Mode = "retrieval_only"
	// ModeFullAnswer adds a synthesized answer to the match list.
	ModeFullAnswer Mode = "full_answer"
)

// Valid reports whether m is a recognized mode. Empty means the
// default, search only.
func (m Mode) Valid() bool {
	switch m {
	case "", ModeSearchOnly, ModeRetrievalOnly, ModeFullAnswer:
		return true
	}
	return false
}

// ServiceConfig tunes the orchestration layer.
type ServiceConfig struct {
	// SynthesisTimeout bounds one synthesis attempt, including time
	// spent queued for the generation slot.
	SynthesisTimeout time.Duration
}

// DefaultServiceConfig returns the production defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{SynthesisTimeout: 60 * time.Second}
}

// Service orchestrates a query end to end: parse, cache lookup,
// retrieve, optional synthesis, metrics and cache write-back.
//
// Retrieval runs unbounded in the caller's goroutine; only synthesis
// goes through the single-slot pool, so retrieval-only traffic is never
// blocked behind an in-flight generation.
type Service struct {
	parser        *Parser
	retriever     *Retriever
	synthesizer   *Synthesizer
	cache         *QueryCache
	chunkStore    store.ChunkStore
	synthesisPool *pool.Pool
	metrics       *metrics.QueryMetrics
	config        *ServiceConfig
}

// NewService wires the query service. synthesizer and cache may be nil,
// disabling answer generation and caching respectively.
func NewService(
	parser *Parser,
	retriever *Retriever,
	synthesizer *Synthesizer,
	cache *QueryCache,
	chunkStore store.ChunkStore,
	synthesisPool *pool.Pool,
	config *ServiceConfig,
) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &Service{
		parser:        parser,
		retriever:     retriever,
		synthesizer:   synthesizer,
		cache:         cache,
		chunkStore:    chunkStore,
		synthesisPool: synthesisPool,
		metrics:       metrics.Get(),
		config:        config,
	}
}

// Query handles one query. Retrieval failures propagate as errors;
// synthesis failures degrade the response instead.
func (s *Service) Query(ctx context.Context, text string, mode Mode, topK int) (*model.QueryResponse, error) {
	if mode == "" {
		mode = ModeSearchOnly
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, text, string(mode), topK); err == nil && cached != nil {
			s.metrics.RecordQuery(string(cached.Intent), true, nil)
			return cached, nil
		}
	}

	parsed := s.parser.Parse(text)

	start := time.Now()
	result, err := s.retriever.Retrieve(ctx, parsed, topK)
	retrievalDur := time.Since(start)
	s.metrics.RecordRetrieval(retrievalDur, err)
	if err != nil {
		s.metrics.RecordQuery(string(parsed.Intent), false, err)
		return nil, fmt.Errorf("query %q: %w", text, err)
	}

	resp := &model.QueryResponse{
		Intent:     parsed.Intent,
		QueryType:  parsed.QueryType,
		Entities:   parsed.Entities,
		Matches:    result.Matches,
		TotalCount: result.TotalCount,
		Timing:     model.Timing{RetrievalMs: retrievalDur.Milliseconds()},
	}

	if s.wantsAnswer(mode, parsed) && len(result.Matches) > 0 {
		s.synthesizeInto(ctx, parsed, result, resp)
	}

	s.metrics.RecordQuery(string(parsed.Intent), false, nil)
	if s.cache != nil {
		_ = s.cache.Set(ctx, text, string(mode), topK, resp)
	}
	return resp, nil
}

// wantsAnswer decides whether to synthesize. An answer-style question
// gets an answer even in the default mode, provided a generative
// backend is configured.
func (s *Service) wantsAnswer(mode Mode, parsed *model.ParsedQuery) bool {
	if s.synthesizer == nil || s.synthesisPool == nil {
		return false
	}
	if mode == ModeFullAnswer {
		return true
	}
	return parsed.Intent == model.IntentAnswerRetrieval
}

type synthesisOutcome struct {
	answer string
	err    error
}

// synthesizeInto runs synthesis through the single generation slot with
// the configured timeout and fills resp. Any failure leaves the match
// list intact and marks the response degraded.
func (s *Service) synthesizeInto(ctx context.Context, parsed *model.ParsedQuery, result *model.RetrievalResult, resp *model.QueryResponse) {
	records := make([]model.RequestRecord, 0, len(result.Matches))
	for _, m := range result.Matches {
		if rec, ok := result.Records[m.RecordID]; ok {
			records = append(records, rec)
		}
	}

	sctx, cancel := context.WithTimeout(ctx, s.config.SynthesisTimeout)
	defer cancel()

	start := time.Now()
	outcome := make(chan synthesisOutcome, 1)

	// Submit may itself block while the slot's queue is full, so it runs
	// off the request goroutine and the select below owns the deadline.
	go func() {
		err := s.synthesisPool.SubmitWithContext(sctx, func() {
			answer, err := s.synthesizer.Synthesize(sctx, parsed, records, result.TotalCount)
			outcome <- synthesisOutcome{answer: answer, err: err}
		})
		if err != nil {
			outcome <- synthesisOutcome{err: fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)}
		}
	}()

	select {
	case out := <-outcome:
		dur := time.Since(start)
		if out.err != nil {
			timedOut := errors.Is(out.err, ErrSynthesisTimeout)
			s.metrics.RecordSynthesis(dur, timedOut, out.err)
			logger.Warnw("answer synthesis failed, degrading to matches only",
				"error", out.err.Error(),
				"intent", parsed.Intent,
			)
			resp.Degraded = true
			return
		}
		s.metrics.RecordSynthesis(dur, false, nil)
		resp.Answer = &out.answer
		resp.Timing.SynthesisMs = dur.Milliseconds()
	case <-sctx.Done():
		dur := time.Since(start)
		s.metrics.RecordSynthesis(dur, true, nil)
		logger.Warnw("answer synthesis timed out, degrading to matches only",
			"timeout", s.config.SynthesisTimeout,
			"intent", parsed.Intent,
		)
		resp.Degraded = true
	}
}

// Stats aggregates index, cache, pool and business counters for the
// stats endpoint.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	out := map[string]any{
		"metrics": s.metrics.Stats(),
	}

	if s.chunkStore != nil {
		if st, err := s.chunkStore.Stats(ctx); err != nil {
			out["index"] = map[string]any{"error": err.Error()}
		} else {
			out["index"] = map[string]any{
				"collection":  st.Collection,
				"chunk_count": st.ChunkCount,
			}
		}
	}

	if s.cache != nil {
		if cs, err := s.cache.Stats(ctx); err == nil {
			out["cache"] = cs
		}
	}

	if s.synthesisPool != nil {
		ps := s.synthesisPool.Stats()
		out["synthesis_pool"] = map[string]any{
			"running":   s.synthesisPool.Running(),
			"waiting":   s.synthesisPool.Waiting(),
			"submitted": ps.SubmittedTasks,
			"completed": ps.CompletedTasks,
			"rejected":  ps.RejectedTasks,
		}
	}

	return out, nil
}

// ClearCache drops every cached query response.
func (s *Service) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}
