package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/llm"
)

const answerMarker = "### תשובה:"

// SynthesizerConfig tunes prompt construction and answer extraction.
type SynthesizerConfig struct {
	// EndMarkers are the instruction terminators searched for in raw
	// model output, in priority order. The text after the last marker
	// occurrence is the answer.
	EndMarkers []string

	// MinAnswerRunes is the minimum extracted-answer length below which
	// the output is treated as malformed.
	MinAnswerRunes int

	// MaxContextRecords caps how many records are rendered into the
	// prompt context.
	MaxContextRecords int

	// Now supplies the clock for deadline bucketing. Tests override it.
	Now func() time.Time
}

// DefaultSynthesizerConfig returns the production defaults.
func DefaultSynthesizerConfig() *SynthesizerConfig {
	return &SynthesizerConfig{
		EndMarkers:        []string{answerMarker, "Answer:"},
		MinAnswerRunes:    5,
		MaxContextRecords: 10,
		Now:               time.Now,
	}
}

// Synthesizer formats retrieved records into a prompt, invokes the
// generative backend once, and extracts a clean answer from the raw
// output. All arithmetic (counts, aggregates, deadline buckets) happens
// here in code; the model is only asked to phrase.
type Synthesizer struct {
	chat   llm.ChatProvider
	config *SynthesizerConfig
}

// NewSynthesizer wraps a chat provider. A nil config selects defaults.
func NewSynthesizer(chat llm.ChatProvider, config *SynthesizerConfig) *Synthesizer {
	if config == nil {
		config = DefaultSynthesizerConfig()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Synthesizer{chat: chat, config: config}
}

const systemPrompt = "אתה עוזר פנימי העונה על שאלות לגבי בקשות עבודה. ענה בעברית, בקצרה, ורק על סמך ההקשר שסופק."

// Synthesize produces a natural-language answer grounded in matches.
// totalCount is the retrieval-wide match count; the record slice may be
// only a page of it, so every number the prompt asserts about the whole
// result set comes from totalCount, never from len(records). Failures
// map onto the synthesis error taxonomy and are always recoverable by
// the caller falling back to the match list.
func (s *Synthesizer) Synthesize(ctx context.Context, parsed *model.ParsedQuery, records []model.RequestRecord, totalCount int) (string, error) {
	if totalCount < len(records) {
		totalCount = len(records)
	}
	prompt := s.buildPrompt(parsed, records, totalCount)

	raw, err := s.chat.Generate(ctx, prompt, systemPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrSynthesisTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}

	answer, err := s.extractAnswer(raw, prompt)
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (s *Synthesizer) buildPrompt(parsed *model.ParsedQuery, records []model.RequestRecord, totalCount int) string {
	if len(records) > s.config.MaxContextRecords {
		records = records[:s.config.MaxContextRecords]
	}

	var b strings.Builder
	b.WriteString(s.instruction(parsed, totalCount))
	b.WriteString("\n\nהקשר:\n")
	b.WriteString(s.formatContext(parsed, records, totalCount))
	b.WriteString("\n")
	b.WriteString(answerMarker)
	return b.String()
}

// instruction selects the per-query-type template. Count instructions
// embed the exact precomputed total and ask only for phrasing.
func (s *Synthesizer) instruction(parsed *model.ParsedQuery, totalCount int) string {
	switch parsed.QueryType {
	case model.QueryTypeCount:
		return fmt.Sprintf(
			"נמצאו בדיוק %d בקשות התואמות את השאילתה %q. נסח תשובה קצרה המציינת את המספר הזה. אל תחשב מספרים בעצמך.",
			totalCount, parsed.RawText)
	case model.QueryTypeSummarize:
		return fmt.Sprintf(
			"סכם בקצרה את הבקשות הבאות עבור השאילתה %q. הסטטיסטיקות שבהקשר חושבו מראש, השתמש בהן כפי שהן.",
			parsed.RawText)
	case model.QueryTypeSimilar:
		return fmt.Sprintf(
			"תאר בקצרה את הבקשות הדומות שנמצאו עבור השאילתה %q.",
			parsed.RawText)
	default:
		if parsed.Intent == model.IntentUrgent {
			return fmt.Sprintf(
				"עבור השאילתה %q, תאר את הבקשות לפי דחיפות. חלוקת הדחיפות שבהקשר חושבה מראש לפי תאריכי היעד, אל תחשב תאריכים בעצמך.",
				parsed.RawText)
		}
		return fmt.Sprintf(
			"ענה בקצרה על השאילתה %q על סמך הבקשות שבהקשר בלבד.",
			parsed.RawText)
	}
}

// formatContext renders records as short labeled blocks, restricted to
// fields the query type cares about, plus precomputed aggregates. The
// headline total is the retrieval-wide count; breakdowns cover only the
// records shown.
func (s *Synthesizer) formatContext(parsed *model.ParsedQuery, records []model.RequestRecord, totalCount int) string {
	var b strings.Builder

	switch parsed.QueryType {
	case model.QueryTypeCount:
		fmt.Fprintf(&b, "סך הכל: %d בקשות\n", totalCount)
		writeBreakdown(&b, "לפי סוג (מתוך המוצגות)", groupCount(records, func(r model.RequestRecord) string {
			return fmt.Sprintf("סוג %d", r.TypeID)
		}))
		writeBreakdown(&b, "לפי סטטוס (מתוך המוצגות)", groupCount(records, func(r model.RequestRecord) string {
			return fmt.Sprintf("סטטוס %d", r.StatusID)
		}))
	case model.QueryTypeSummarize:
		fmt.Fprintf(&b, "סך הכל: %d בקשות\n", totalCount)
		writeBreakdown(&b, "פרויקטים מובילים", groupCount(records, func(r model.RequestRecord) string {
			if r.ProjectName == "" {
				return "ללא פרויקט"
			}
			return r.ProjectName
		}))
		s.writeRecordBlocks(&b, records)
	default:
		if parsed.Intent == model.IntentUrgent {
			s.writeUrgencyBuckets(&b, records)
		}
		s.writeRecordBlocks(&b, records)
	}

	return b.String()
}

func (s *Synthesizer) writeRecordBlocks(b *strings.Builder, records []model.RequestRecord) {
	for _, r := range records {
		fmt.Fprintf(b, "- בקשה %s", r.RecordID)
		if r.ProjectName != "" {
			fmt.Fprintf(b, " | פרויקט: %s", r.ProjectName)
		}
		if r.ResponsibleEmployee != "" {
			fmt.Fprintf(b, " | אחראי: %s", r.ResponsibleEmployee)
		}
		if r.Deadline != nil {
			fmt.Fprintf(b, " | יעד: %s", r.Deadline.Format("2006-01-02"))
		}
		if r.Description != "" {
			fmt.Fprintf(b, " | %s", r.Description)
		}
		b.WriteString("\n")
	}
}

// writeUrgencyBuckets precomputes days-until-deadline per record and
// renders categorized buckets, so the model never does date arithmetic.
func (s *Synthesizer) writeUrgencyBuckets(b *strings.Builder, records []model.RequestRecord) {
	now := s.config.Now()
	var veryUrgent, urgent, notUrgent []string
	for _, r := range records {
		if r.Deadline == nil {
			notUrgent = append(notUrgent, r.RecordID)
			continue
		}
		days := int(r.Deadline.Sub(now).Hours() / 24)
		switch {
		case days < 2:
			veryUrgent = append(veryUrgent, r.RecordID)
		case days < 7:
			urgent = append(urgent, r.RecordID)
		default:
			notUrgent = append(notUrgent, r.RecordID)
		}
	}
	fmt.Fprintf(b, "דחוף מאוד (פחות מיומיים): %s\n", joinOrNone(veryUrgent))
	fmt.Fprintf(b, "דחוף (פחות משבוע): %s\n", joinOrNone(urgent))
	fmt.Fprintf(b, "לא דחוף: %s\n", joinOrNone(notUrgent))
}

// extractAnswer pulls the answer out of raw model output. The output
// may echo the prompt and control markers; the answer is whatever
// follows the last recognized end marker. With no marker present,
// everything past the known prompt length is used instead. A result
// shorter than the minimum is a malformed generation.
func (s *Synthesizer) extractAnswer(raw, prompt string) (string, error) {
	answer := ""
	markerFound := false
	for _, marker := range s.config.EndMarkers {
		if idx := strings.LastIndex(raw, marker); idx >= 0 {
			answer = raw[idx+len(marker):]
			markerFound = true
			break
		}
	}

	if !markerFound {
		if utf8.RuneCountInString(raw) > utf8.RuneCountInString(prompt) {
			runes := []rune(raw)
			answer = string(runes[utf8.RuneCountInString(prompt):])
		} else {
			answer = raw
		}
	}

	answer = strings.TrimSpace(answer)
	if utf8.RuneCountInString(answer) < s.config.MinAnswerRunes {
		return "", fmt.Errorf("%w: extracted %d runes", ErrSynthesisMalformed, utf8.RuneCountInString(answer))
	}
	return answer, nil
}

func groupCount(records []model.RequestRecord, key func(model.RequestRecord) string) []groupEntry {
	counts := make(map[string]int)
	for _, r := range records {
		counts[key(r)]++
	}
	entries := make([]groupEntry, 0, len(counts))
	for k, n := range counts {
		entries = append(entries, groupEntry{label: k, count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})
	return entries
}

type groupEntry struct {
	label string
	count int
}

func writeBreakdown(b *strings.Builder, title string, entries []groupEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:", title)
	for _, e := range entries {
		fmt.Fprintf(b, " %s=%d", e.label, e.count)
	}
	b.WriteString("\n")
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "אין"
	}
	return strings.Join(ids, ", ")
}
