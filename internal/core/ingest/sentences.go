package ingest

import (
	"strings"
	"unicode"
)

// closers may trail a sentence terminator and still belong to the sentence.
const closers = `"')]`

// splitSentences cuts prose into sentences, keeping each terminator (and any
// trailing quotes/brackets) with its sentence. Text without a terminator is
// returned as a single sentence, so no input prose is ever dropped.
func splitSentences(text string) []string {
	var sents []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || strings.ContainsRune(closers, runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			// Terminator inside a token (e.g. "v1.2"), keep scanning.
			continue
		}
		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			sents = append(sents, s)
		}
		start = j
		i = j - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sents = append(sents, tail)
	}
	return sents
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
