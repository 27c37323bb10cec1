package form

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldLabel reduces a label to its comparison key: accents removed, case
// folded and whitespace collapsed. "  Maçã  Fuji" and "maca fuji" share a key.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// maxDistance is the largest edit distance still reported as similar.
func maxDistance(key string) int {
	n := utf8.RuneCountInString(key) / 3
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}

type scored struct {
	option   Option
	distance int
	index    int
}

// rankSimilar orders opts by edit distance to label, dropping distant ones.
func rankSimilar(opts []Option, label string, n int) []Option {
	key := foldLabel(label)
	if key == "" || n <= 0 {
		return nil
	}
	limit := maxDistance(key)

	var hits []scored
	for i, o := range opts {
		d := levenshtein.ComputeDistance(key, foldLabel(o.Label))
		if d <= limit {
			hits = append(hits, scored{option: o, distance: d, index: i})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].index < hits[j].index
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]Option, len(hits))
	for i, h := range hits {
		out[i] = h.option
	}
	return out
}
