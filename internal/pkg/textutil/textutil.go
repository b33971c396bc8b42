// Package textutil provides text processing helpers shared by the query
// parser and the hybrid retriever.
package textutil

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CosineSimilarity computes the cosine similarity of two vectors.
// The result is in [-1, 1]; mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeCosineSimilarity maps a cosine similarity into [0, 1].
func NormalizeCosineSimilarity(similarity float64) float64 {
	return (similarity + 1) / 2
}

// Normalize lowercases a query and collapses runs of whitespace into
// single spaces. Non-Latin script and diacritics are preserved: for
// Hebrew text lowercasing is the identity, and vowel points carry
// meaning so they are never stripped.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContainsFold reports whether haystack contains needle after both are
// normalized. Empty needles never match.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), Normalize(needle))
}

// IsDigits reports whether s is non-empty and consists only of ASCII
// digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TrimDanglingFragments removes stray single-letter tokens left at the
// edges of a value after prefix stripping ("dangling fragments").
// Interior tokens are kept as-is.
func TrimDanglingFragments(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 0 && utf8.RuneCountInString(tokens[len(tokens)-1]) == 1 {
		tokens = tokens[:len(tokens)-1]
	}
	for len(tokens) > 0 && utf8.RuneCountInString(tokens[0]) == 1 {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// FirstRune returns the first rune of s, or 0 for an empty string.
func FirstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// TruncateRunes truncates s to at most maxLen Unicode characters.
func TruncateRunes(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// SplitIntoChunks splits text into overlapping chunks of chunkSize
// Unicode characters. This mirrors the layout the ingestion pipeline
// produces; the service only needs it for tests and local tooling.
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	step := chunkSize - overlap
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// HasLetter reports whether s contains at least one letter in any
// script.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
