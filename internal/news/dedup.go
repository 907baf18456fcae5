package news

import "regexp"

// NearDuplicateThreshold is the number of shared distinct word tokens at which two
// summaries count as the same story.
const NearDuplicateThreshold = 3

// wordPattern matches maximal runs of letters, digits and underscore in any script.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type tokenSet map[string]struct{}

func tokenize(s string) tokenSet {
	words := wordPattern.FindAllString(s, -1)
	set := make(tokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlaps(a, b tokenSet) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
			if shared >= NearDuplicateThreshold {
				return true
			}
		}
	}
	return false
}

// IsNearDuplicate reports whether two summaries share at least NearDuplicateThreshold
// distinct word tokens. An empty summary never matches.
func IsNearDuplicate(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return overlaps(tokenize(a), tokenize(b))
}

// DedupStats counts articles dropped by each tier.
type DedupStats struct {
	Exact int
	Near  int
}

// Suppress keeps the first article of every duplicate group, preserving input order.
// An article is dropped when its fingerprint was already kept, or when its summary is
// a near duplicate of any kept article's summary.
func Suppress(articles []Article) ([]Article, DedupStats) {
	var stats DedupStats
	kept := make([]Article, 0, len(articles))
	keptTokens := make([]tokenSet, 0, len(articles))
	seen := make(map[string]struct{}, len(articles))

	for _, a := range articles {
		if _, dup := seen[a.Fingerprint]; dup {
			stats.Exact++
			continue
		}

		var tokens tokenSet
		if a.Summary != "" {
			tokens = tokenize(a.Summary)
		}

		near := false
		if a.Summary != "" {
			for i, prev := range kept {
				if prev.Summary == "" {
					continue
				}
				if overlaps(tokens, keptTokens[i]) {
					near = true
					break
				}
			}
		}
		if near {
			stats.Near++
			continue
		}

		kept = append(kept, a)
		keptTokens = append(keptTokens, tokens)
		seen[a.Fingerprint] = struct{}{}
	}

	return kept, stats
}

// RemoveDuplicates is Suppress without the statistics.
func RemoveDuplicates(articles []Article) []Article {
	kept, _ := Suppress(articles)
	return kept
}
