// Package lexicon holds the deterministic text resources the matching
// strategies share: tokenization, alias lookup, bounded edit distance and
// numeric spec parsing. Nothing in this package calls out of process.
package lexicon

import (
	"regexp"
	"sort"
	"strings"
)

// wordPattern matches identifiers in the bilingual (Turkish/English)
// requirement corpus, including underscored HDL names.
var wordPattern = regexp.MustCompile(`[a-zA-Z0-9_çğıöşüÇĞİÖŞÜ]{2,}`)

var stopwords = map[string]bool{
	"bu": true, "projede": true, "proje": true, "var": true,
	"mi": true, "mı": true, "mu": true, "mü": true,
	"ve": true, "ile": true, "için": true, "bir": true,
	"the": true, "is": true, "are": true, "in": true, "on": true,
	"and": true, "for": true, "with": true, "olarak": true,
	"modunda": true, "çalışacak": true, "olacak": true,
}

// Tokenize lowercases text and returns its unique word tokens in sorted
// order.
func Tokenize(text string) []string {
	seen := map[string]bool{}
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		seen[tok] = true
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Terms returns the candidate technical terms of a requirement text:
// tokens of three or more characters with generic filler words removed.
func Terms(text string) []string {
	var out []string
	for _, tok := range Tokenize(text) {
		if len([]rune(tok)) < 3 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

var instanceSuffix = regexp.MustCompile(`_\d+$`)

// BaseName strips a trailing instance index from an extracted entity name,
// e.g. "axi_dma_0" -> "axi_dma".
func BaseName(name string) string {
	return instanceSuffix.ReplaceAllString(strings.ToLower(name), "")
}
