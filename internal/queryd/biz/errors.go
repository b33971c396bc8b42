// Package biz implements the query-understanding and hybrid-retrieval
// engine: entity/intent parsing, weighted vector retrieval with
// conjunctive filtering, answer synthesis and the orchestrating service.
package biz

import "errors"

var (
	// ErrRetrievalUnavailable signals that the document index could not
	// be reached. Callers must surface this distinctly from "no matches".
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrSynthesisUnavailable signals that the generative backend failed.
	// Recoverable: the caller degrades to a matches-only response.
	ErrSynthesisUnavailable = errors.New("answer synthesis unavailable")

	// ErrSynthesisTimeout signals that a synthesis call exceeded the
	// caller's deadline, including time spent queued for the single
	// generation slot.
	ErrSynthesisTimeout = errors.New("answer synthesis timed out")

	// ErrSynthesisMalformed signals that the generated output could not
	// be extracted into a usable answer even after fallback extraction.
	ErrSynthesisMalformed = errors.New("answer synthesis produced malformed output")
)
