package biz

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/internal/pkg/textutil"
)

// maxNameTokens bounds how many tokens after a marker are taken as one
// name value.
const maxNameTokens = 3

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02.01.2006"}

// Parser classifies a raw query into an intent and extracts typed
// entities. Parse never fails: with no pattern match the intent is
// general and the entity map is empty.
type Parser struct {
	config     *PatternConfig
	knownNames map[string]struct{}
}

// NewParser builds a parser around the given pattern configuration.
// A nil config selects the built-in Hebrew plus English defaults.
func NewParser(config *PatternConfig) *Parser {
	if config == nil {
		config = DefaultPatternConfig()
	}
	names := make(map[string]struct{}, len(config.KnownNames))
	for _, n := range config.KnownNames {
		names[textutil.Normalize(n)] = struct{}{}
	}
	return &Parser{config: config, knownNames: names}
}

// Parse turns a raw query into an immutable ParsedQuery.
func (p *Parser) Parse(raw string) *model.ParsedQuery {
	normalized := textutil.Normalize(raw)
	tokens := strings.Fields(normalized)
	entities := model.Entities{}

	p.extractNumbers(tokens, entities)
	p.extractDates(tokens, entities)
	p.extractPerson(tokens, entities)
	p.extractProject(tokens, entities)

	queryType := p.classifyQueryType(normalized, tokens)
	intent := p.classifyIntent(normalized, tokens, entities, queryType)

	return &model.ParsedQuery{
		RawText:      raw,
		Normalized:   normalized,
		Intent:       intent,
		QueryType:    queryType,
		Entities:     entities,
		TargetFields: p.config.TargetFields[intent],
	}
}

// extractNumbers classifies digit tokens. Long digit strings are record
// identifiers regardless of position; short ones are type or status
// codes only when a matching marker precedes them.
func (p *Parser) extractNumbers(tokens []string, entities model.Entities) {
	for i, tok := range tokens {
		if !textutil.IsDigits(tok) {
			continue
		}
		if utf8.RuneCountInString(tok) >= p.config.RecordIDMinDigits {
			if !entities.Has(model.EntityRecordID) {
				entities[model.EntityRecordID] = tok
			}
			continue
		}
		if i == 0 {
			continue
		}
		switch {
		case isMarker(tokens[i-1], p.config.TypeMarkers):
			entities[model.EntityTypeID] = tok
		case isMarker(tokens[i-1], p.config.StatusMarkers):
			entities[model.EntityStatusID] = tok
		}
	}
}

func (p *Parser) extractDates(tokens []string, entities model.Entities) {
	for _, tok := range tokens {
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, tok)
			if err != nil {
				continue
			}
			iso := t.Format("2006-01-02")
			if !entities.Has(model.EntityDateFrom) {
				entities[model.EntityDateFrom] = iso
			} else if !entities.Has(model.EntityDateTo) {
				entities[model.EntityDateTo] = iso
			}
			break
		}
	}
}

// extractPerson looks for a person marker and takes the following
// tokens as the name, stripping a glued prefix from the first one.
// Without a marker, a token that resolves to a dictionary name (bare or
// behind a glued prefix) is still accepted.
func (p *Parser) extractPerson(tokens []string, entities model.Entities) {
	for i, tok := range tokens {
		if !isMarker(tok, p.config.PersonMarkers) {
			continue
		}
		if name := p.collectName(tokens[i+1:]); name != "" {
			entities[model.EntityPersonName] = name
			return
		}
	}

	for i, tok := range tokens {
		// A dictionary name right after a project marker is the
		// project's name, not a person.
		if i > 0 && isMarker(tokens[i-1], p.config.ProjectMarkers) {
			continue
		}
		if p.isKnownName(tok) {
			entities[model.EntityPersonName] = tok
			return
		}
		if stripped := p.stripGluedPrefix(tok); stripped != tok && p.isKnownName(stripped) {
			entities[model.EntityPersonName] = stripped
			return
		}
	}
}

func (p *Parser) extractProject(tokens []string, entities model.Entities) {
	for i, tok := range tokens {
		if !isMarker(tok, p.config.ProjectMarkers) {
			continue
		}
		if name := p.collectName(tokens[i+1:]); name != "" {
			entities[model.EntityProjectName] = name
			return
		}
	}
}

// collectName takes leading non-marker, non-numeric tokens as a name.
// Tokens without a single letter (punctuation runs) end the name too.
// The first token may carry a glued prefix; stray single-letter
// fragments around the result are dropped.
func (p *Parser) collectName(rest []string) string {
	var parts []string
	for _, tok := range rest {
		if textutil.IsDigits(tok) || !textutil.HasLetter(tok) || p.isStopToken(tok) || isMarker(tok, p.config.NoiseWords) {
			break
		}
		parts = append(parts, tok)
		if len(parts) == maxNameTokens {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}
	parts[0] = p.stripGluedPrefix(parts[0])
	return textutil.TrimDanglingFragments(strings.Join(parts, " "))
}

// stripGluedPrefix removes up to two relational prefix letters from the
// front of a token. Every prefix letter doubles as a plausible
// name-initial letter, so a strip is committed only when the dictionary
// confirms the remainder is a known name; otherwise the token is
// returned untouched rather than truncated.
func (p *Parser) stripGluedPrefix(token string) string {
	if p.isKnownName(token) {
		return token
	}
	candidate := token
	for depth := 0; depth < 2; depth++ {
		r := textutil.FirstRune(candidate)
		if !containsRune(p.config.PrefixLetters, r) {
			break
		}
		remaining := strings.TrimPrefix(candidate, string(r))
		if utf8.RuneCountInString(remaining) < p.config.MinNameLength {
			break
		}
		candidate = remaining
		if p.isKnownName(candidate) {
			return candidate
		}
	}
	return token
}

func (p *Parser) classifyQueryType(normalized string, tokens []string) model.QueryType {
	switch {
	case containsMarker(normalized, tokens, p.config.CountMarkers):
		return model.QueryTypeCount
	case containsMarker(normalized, tokens, p.config.SummarizeMarkers):
		return model.QueryTypeSummarize
	case containsMarker(normalized, tokens, p.config.SimilarMarkers):
		return model.QueryTypeSimilar
	default:
		return model.QueryTypeFind
	}
}

// classifyIntent applies the precedence order: urgency beats every other
// signal, then count/similar query shapes, then answer-style questions,
// then the most specific extracted entity.
func (p *Parser) classifyIntent(normalized string, tokens []string, entities model.Entities, queryType model.QueryType) model.Intent {
	if containsMarker(normalized, tokens, p.config.UrgencyWords) {
		return model.IntentUrgent
	}
	switch queryType {
	case model.QueryTypeCount:
		return model.IntentCount
	case model.QueryTypeSimilar:
		return model.IntentSimilar
	}
	if containsMarker(normalized, tokens, p.config.AnswerMarkers) {
		return model.IntentAnswerRetrieval
	}
	switch {
	case entities.Has(model.EntityPersonName):
		return model.IntentPerson
	case entities.Has(model.EntityProjectName):
		return model.IntentProject
	case entities.Has(model.EntityTypeID):
		return model.IntentType
	case entities.Has(model.EntityStatusID):
		return model.IntentStatus
	}
	return model.IntentGeneral
}

func (p *Parser) isKnownName(s string) bool {
	_, ok := p.knownNames[textutil.Normalize(s)]
	return ok
}

func (p *Parser) isStopToken(tok string) bool {
	for _, set := range [][]string{
		p.config.PersonMarkers,
		p.config.ProjectMarkers,
		p.config.TypeMarkers,
		p.config.StatusMarkers,
		p.config.CountMarkers,
		p.config.SummarizeMarkers,
		p.config.SimilarMarkers,
		p.config.UrgencyWords,
	} {
		if isMarker(tok, set) {
			return true
		}
	}
	return false
}

// isMarker matches a token against single-word markers.
func isMarker(tok string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(m, " ") && tok == m {
			return true
		}
	}
	return false
}

// containsMarker matches single-word markers against tokens and
// multi-word markers as substrings of the normalized query.
func containsMarker(normalized string, tokens []string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(m, " ") {
			if strings.Contains(normalized, m) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == m {
				return true
			}
		}
	}
	return false
}
