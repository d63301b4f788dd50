// Package moderation masks forbidden words in message bodies before they
// reach the log.
package moderation

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Masker replaces forbidden spans with a mask rune. Matching ignores case,
// punctuation and spacing so split or decorated words are still caught.
type Masker struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewMasker builds the Aho-Corasick automaton from the forbidden word list.
func NewMasker(words []string, maskChar rune) (*Masker, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Masker{matcher: m, maskChar: maskChar}, nil
}

// LoadWords reads one forbidden word per line, skipping blanks.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}

// Mask rewrites every matched span of the original text with the mask rune,
// preserving the untouched characters and overall length.
func (m *Masker) Mask(original string) string {
	if m == nil {
		return original
	}
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original
	}

	origRunes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			origRunes[i] = m.maskChar
		}
	}
	return string(origRunes)
}

// normalize lowercases the input, drops noise runes, and tracks where each
// kept rune sits in the original so matches can be mapped back.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		if isNoise(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
