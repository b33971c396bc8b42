package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(nil)
}

func TestParser_DefaultsToGeneral(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("משהו על שיפוצים במשרד")
	assert.Equal(t, model.IntentGeneral, parsed.Intent)
	assert.Equal(t, model.QueryTypeFind, parsed.QueryType)
	assert.Empty(t, parsed.Entities)
	assert.Empty(t, parsed.TargetFields)
}

func TestParser_UrgencyBeatsPersonContext(t *testing.T) {
	p := newTestParser(t)

	// "של" is a person marker but the urgency word must win.
	parsed := p.Parse("בקשות דחופות של דוד")
	assert.Equal(t, model.IntentUrgent, parsed.Intent)
	// The person entity is still extracted for conjunctive filtering.
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
}

func TestParser_PersonAfterMarker(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("הבקשות של דוד")
	assert.Equal(t, model.IntentPerson, parsed.Intent)
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
	assert.Equal(t,
		[]model.FieldName{model.FieldUpdatedBy, model.FieldCreatedBy, model.FieldResponsibleEmployee},
		parsed.TargetFields)
}

func TestParser_GluedPrefixStripped(t *testing.T) {
	p := newTestParser(t)

	// "מדוד" is the prefix mem glued to the name "דוד".
	parsed := p.Parse("בקשות מדוד")
	require.True(t, parsed.Entities.Has(model.EntityPersonName))
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
}

func TestParser_AmbiguousPrefixNotOverStripped(t *testing.T) {
	p := newTestParser(t)

	// "משה" starts with a valid prefix letter but is itself a known
	// name; it must not become "שה".
	parsed := p.Parse("הבקשות של משה")
	assert.Equal(t, "משה", parsed.Entities[model.EntityPersonName])
}

func TestParser_NameInitialPrefixLetterKept(t *testing.T) {
	p := newTestParser(t)

	// Names starting with vav or kaf are not in the dictionary, so the
	// leading letter must be treated as part of the name, not stripped
	// as a glued prefix.
	tests := []struct {
		query string
		name  string
	}{
		{"הבקשות של ורד", "ורד"},
		{"הבקשות של כרמל", "כרמל"},
		{"הבקשות של והב", "והב"},
	}
	for _, tt := range tests {
		parsed := p.Parse(tt.query)
		assert.Equal(t, tt.name, parsed.Entities[model.EntityPersonName], "query %q", tt.query)
	}
}

func TestParser_DoublePrefixStripped(t *testing.T) {
	p := newTestParser(t)

	// vav then mem glued to "דוד".
	parsed := p.Parse("בקשות ומדוד")
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
}

func TestParser_MultiEntityOnePass(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("בקשות של דוד סוג 4")
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
	assert.Equal(t, "4", parsed.Entities[model.EntityTypeID])
	assert.Equal(t, model.IntentPerson, parsed.Intent)
}

func TestParser_TypeAndStatusCodes(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("בקשות מסוג 4 בסטטוס 2")
	assert.Equal(t, "4", parsed.Entities[model.EntityTypeID])
	assert.Equal(t, "2", parsed.Entities[model.EntityStatusID])
	assert.Equal(t, model.IntentType, parsed.Intent)
}

func TestParser_RecordIDByFormat(t *testing.T) {
	p := newTestParser(t)

	// Long digit strings are record ids even after a type marker.
	parsed := p.Parse("סוג 10042")
	assert.Equal(t, "10042", parsed.Entities[model.EntityRecordID])
	assert.False(t, parsed.Entities.Has(model.EntityTypeID))

	// A short unmarked number is not an entity at all.
	parsed = p.Parse("bring me 4 requests")
	assert.False(t, parsed.Entities.Has(model.EntityTypeID))
	assert.False(t, parsed.Entities.Has(model.EntityRecordID))
}

func TestParser_QueryTypes(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		query string
		qt    model.QueryType
	}{
		{"כמה בקשות יש לדוד", model.QueryTypeCount},
		{"how many requests of type 4", model.QueryTypeCount},
		{"תן לי סיכום של הבקשות", model.QueryTypeSummarize},
		{"בקשות דומות ל 10042", model.QueryTypeSimilar},
		{"הבקשות של דוד", model.QueryTypeFind},
	}
	for _, tt := range tests {
		parsed := p.Parse(tt.query)
		assert.Equal(t, tt.qt, parsed.QueryType, "query %q", tt.query)
	}
}

func TestParser_CountIntent(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("כמה בקשות מסוג 4")
	assert.Equal(t, model.IntentCount, parsed.Intent)
	assert.Equal(t, model.QueryTypeCount, parsed.QueryType)
	assert.Equal(t, "4", parsed.Entities[model.EntityTypeID])
}

func TestParser_SimilarWithRecordID(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("בקשות דומות ל 10042")
	assert.Equal(t, model.IntentSimilar, parsed.Intent)
	assert.Equal(t, "10042", parsed.Entities[model.EntityRecordID])
}

func TestParser_AnswerRetrieval(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("למה הבקשה מעוכבת")
	assert.Equal(t, model.IntentAnswerRetrieval, parsed.Intent)
}

func TestParser_ProjectMarker(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("בקשות בפרויקט אלפא")
	assert.Equal(t, model.IntentProject, parsed.Intent)
	assert.Equal(t, "אלפא", parsed.Entities[model.EntityProjectName])
	assert.Equal(t, []model.FieldName{model.FieldProjectName}, parsed.TargetFields)
}

func TestParser_DateRange(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("בקשות מתאריך 2026-01-01 עד 2026-02-01")
	assert.Equal(t, "2026-01-01", parsed.Entities[model.EntityDateFrom])
	assert.Equal(t, "2026-02-01", parsed.Entities[model.EntityDateTo])
}

func TestParser_NeverPanicsOnJunk(t *testing.T) {
	p := newTestParser(t)

	for _, q := range []string{"", "   ", "???", "של", "מ", "1234567890123"} {
		assert.NotPanics(t, func() { _ = p.Parse(q) }, "query %q", q)
	}
}

func TestParser_PunctuationIsNotAName(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("הבקשות של ???")
	assert.False(t, parsed.Entities.Has(model.EntityPersonName))
}

func TestParser_EnglishMarkers(t *testing.T) {
	p := newTestParser(t)

	parsed := p.Parse("requests by דוד type 4")
	assert.Equal(t, "דוד", parsed.Entities[model.EntityPersonName])
	assert.Equal(t, "4", parsed.Entities[model.EntityTypeID])
}
