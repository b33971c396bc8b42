package textutil_test

import (
	"testing"

	"github.com/ariel1441/ai-rag-project-sub000/internal/pkg/textutil"
	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
		{
			name:     "length mismatch",
			a:        []float32{1.0, 2.0},
			b:        []float32{1.0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", textutil.Normalize("  Hello   World "))
	// Hebrew has no case; normalization must leave the script intact.
	assert.Equal(t, "בקשות של דוד", textutil.Normalize("בקשות  של דוד"))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, textutil.ContainsFold("Updated by David Cohen", "david cohen"))
	assert.True(t, textutil.ContainsFold("פרויקט אלפא", "אלפא"))
	assert.False(t, textutil.ContainsFold("anything", ""))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, textutil.IsDigits("12345"))
	assert.False(t, textutil.IsDigits("12a45"))
	assert.False(t, textutil.IsDigits(""))
}

func TestTrimDanglingFragments(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"דוד כהן ו", "דוד כהן"},
		{"ב דוד כהן", "דוד כהן"},
		{"דוד כהן", "דוד כהן"},
		{"a", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, textutil.TrimDanglingFragments(tt.in), "input %q", tt.in)
	}
}

func TestSplitIntoChunks(t *testing.T) {
	chunks := textutil.SplitIntoChunks("abcdefghij", 4, 1)
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)

	// Short input returns a single chunk.
	assert.Equal(t, []string{"abc"}, textutil.SplitIntoChunks("abc", 10, 2))

	assert.Nil(t, textutil.SplitIntoChunks("abc", 0, 0))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "אבג", textutil.TruncateRunes("אבגדה", 3))
	assert.Equal(t, "ab", textutil.TruncateRunes("ab", 10))
}
