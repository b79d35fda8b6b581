package lexicon

import (
	"sort"
	"strings"
)

// AliasTable maps short technical terms to the canonical entity name stems
// they are known by in extracted projects, e.g. "dma" -> ["axi_dma"].
type AliasTable struct {
	canonical map[string][]string
}

func NewAliasTable(aliases map[string][]string) *AliasTable {
	t := &AliasTable{canonical: make(map[string][]string, len(aliases))}
	for term, names := range aliases {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || len(names) == 0 {
			continue
		}
		out := make([]string, 0, len(names))
		for _, n := range names {
			n = strings.ToLower(strings.TrimSpace(n))
			if n != "" {
				out = append(out, n)
			}
		}
		sort.Strings(out)
		t.canonical[key] = out
	}
	return t
}

// Lookup returns the canonical name stems for a term, sorted, or nil.
func (t *AliasTable) Lookup(term string) []string {
	if t == nil {
		return nil
	}
	return t.canonical[strings.ToLower(term)]
}
