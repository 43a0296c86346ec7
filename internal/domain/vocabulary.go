package domain

import (
	"slices"
	"strings"
)

// defaultWords is the demo vocabulary offered when a new experiment is drafted.
var defaultWords = []string{"yes", "no", "water", "help", "stop", "go", "left", "right"}

// Vocabulary is an ordered set of unique, normalized target words.
// The zero value is an empty vocabulary ready to use.
type Vocabulary struct {
	words []string
}

// NewVocabulary builds a vocabulary by adding each word in order.
// Blank and duplicate words are dropped.
func NewVocabulary(words ...string) *Vocabulary {
	v := &Vocabulary{}
	for _, w := range words {
		v.Add(w)
	}
	return v
}

// DefaultVocabulary returns a vocabulary seeded with the demo word set.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultWords...)
}

// NormalizeWord trims and lowercases a word.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Add appends the normalized word. It reports false when the word is blank
// or already present; neither case is an error.
func (v *Vocabulary) Add(word string) bool {
	w := NormalizeWord(word)
	if w == "" || slices.Contains(v.words, w) {
		return false
	}
	v.words = append(v.words, w)
	return true
}

// Remove deletes the first exact match. It reports whether a word was removed.
func (v *Vocabulary) Remove(word string) bool {
	i := slices.Index(v.words, word)
	if i < 0 {
		return false
	}
	v.words = slices.Delete(v.words, i, i+1)
	return true
}

// Contains reports whether the normalized word is in the vocabulary.
func (v *Vocabulary) Contains(word string) bool {
	return slices.Contains(v.words, NormalizeWord(word))
}

// Words returns a copy of the words in insertion order.
func (v *Vocabulary) Words() []string {
	return slices.Clone(v.words)
}

func (v *Vocabulary) Len() int {
	return len(v.words)
}
