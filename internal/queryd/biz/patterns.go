package biz

import (
	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
)

// PatternConfig is the data-driven pattern set the parser consumes.
// All matching is driven by this structure so new intents or languages
// are added by extending the data, not the parser's control flow.
type PatternConfig struct {
	// UrgencyWords mark a query as urgent. Urgency suppresses weaker
	// intent signals that co-occur with it.
	UrgencyWords []string

	// PersonMarkers are tokens that introduce a person name, either as a
	// separate word ("shel" = of) or as context words like "created by".
	PersonMarkers []string

	// ProjectMarkers introduce a project name.
	ProjectMarkers []string

	// TypeMarkers and StatusMarkers introduce short numeric codes.
	TypeMarkers   []string
	StatusMarkers []string

	// CountMarkers, SummarizeMarkers and SimilarMarkers select the
	// query type. AnswerMarkers select the answer_retrieval intent.
	CountMarkers     []string
	SummarizeMarkers []string
	SimilarMarkers   []string
	AnswerMarkers    []string

	// NoiseWords are common query words that never belong inside an
	// extracted name value.
	NoiseWords []string

	// PrefixLetters are single letters that attach to the front of a
	// name with no space (relational/possessive prefixes). Every one of
	// them also starts real names, so a strip is committed only when
	// KnownNames confirms the remainder.
	PrefixLetters []rune

	// KnownNames is the entity dictionary used to resolve glued
	// prefixes. Lookup is normalization-insensitive.
	KnownNames []string

	// MinNameLength is the minimum number of runes a name must retain
	// after a prefix strip. Below it the strip is rejected.
	MinNameLength int

	// RecordIDMinDigits separates record identifiers (long digit
	// strings) from type/status codes (short ones).
	RecordIDMinDigits int

	// TargetFields maps each intent to the record fields that carry
	// extra ranking weight, in priority order.
	TargetFields map[model.Intent][]model.FieldName
}

// DefaultPatternConfig returns the built-in Hebrew plus English pattern
// set used by the production deployment.
func DefaultPatternConfig() *PatternConfig {
	return &PatternConfig{
		UrgencyWords: []string{
			"דחוף", "דחופות", "דחופים", "בדחיפות", "דדליין",
			"urgent", "deadline", "overdue",
		},
		PersonMarkers: []string{
			"של", "מאת", "אחראי", "אחראית", "עדכן", "עדכנה", "יצר", "יצרה",
			"פתח", "פתחה", "מטפל", "מטפלת",
			"by", "from", "of", "assignee", "owner",
		},
		ProjectMarkers: []string{
			"פרויקט", "בפרויקט", "פרוייקט", "בפרוייקט", "מיזם",
			"project",
		},
		TypeMarkers: []string{
			"סוג", "מסוג", "type",
		},
		StatusMarkers: []string{
			"סטטוס", "בסטטוס", "מצב", "במצב", "status",
		},
		CountMarkers: []string{
			"כמה", "מספר", "how many", "count",
		},
		SummarizeMarkers: []string{
			"סכם", "סיכום", "תקציר", "סקירה", "summarize", "summary", "overview",
		},
		SimilarMarkers: []string{
			"דומה", "דומות", "דומים", "similar",
		},
		AnswerMarkers: []string{
			"למה", "מדוע", "הסבר", "מה הסיבה", "why", "explain",
		},
		NoiseWords: []string{
			"בקשות", "הבקשות", "בקשה", "הבקשה", "יש", "לי", "תן", "כל",
			"requests", "request", "all", "the", "me",
		},
		PrefixLetters: []rune{'מ', 'ל', 'ב', 'כ', 'ש', 'ה', 'ו'},
		KnownNames: []string{
			"דוד", "משה", "שרה", "יוסי", "רונית", "אבי", "מיכל", "דנה",
			"איתן", "נועה", "עמית", "טל",
		},
		MinNameLength:     2,
		RecordIDMinDigits: 5,
		TargetFields: map[model.Intent][]model.FieldName{
			model.IntentPerson: {
				model.FieldUpdatedBy,
				model.FieldCreatedBy,
				model.FieldResponsibleEmployee,
			},
			model.IntentProject: {model.FieldProjectName},
		},
	}
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
