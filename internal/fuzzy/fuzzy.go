// Package fuzzy finds the closest strings to a query in a closed vocabulary.
//
// Similarity is the Ratcliff/Obershelp ratio 2*M/T, where M is the number of
// matching characters and T the total length of both strings, so identical
// strings score 1 and strings with nothing in common score 0.
package fuzzy

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultCutoff drops candidates scoring below it.
	DefaultCutoff = 0.6
	// DefaultLimit is the default number of matches returned.
	DefaultLimit = 3
)

// Match is one candidate and its similarity to the query.
type Match struct {
	Value string
	Score float64
	index int
}

// CloseMatches returns at most n candidates whose similarity to query is at
// least cutoff, best first; equal scores keep their input order. It returns
// an empty slice for an empty query, no candidates or n <= 0.
func CloseMatches(query string, candidates []string, n int, cutoff float64) []string {
	matches := Rank(query, candidates, n, cutoff)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Value)
	}
	return out
}

// Rank is CloseMatches with scores.
func Rank(query string, candidates []string, n int, cutoff float64) []Match {
	if query == "" || len(candidates) == 0 || n <= 0 {
		return []Match{}
	}
	cutoff = clamp(cutoff)

	// The query is the second sequence so the matcher indexes it only once.
	matcher := difflib.NewMatcher(nil, chars(query))
	var found []Match
	for i, candidate := range candidates {
		matcher.SetSeq1(chars(candidate))
		if matcher.RealQuickRatio() < cutoff || matcher.QuickRatio() < cutoff {
			continue
		}
		score := matcher.Ratio()
		if score < cutoff {
			continue
		}
		found = append(found, Match{Value: candidate, Score: score, index: i})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Score != found[j].Score {
			return found[i].Score > found[j].Score
		}
		return found[i].index < found[j].index
	})
	if len(found) > n {
		found = found[:n]
	}
	if found == nil {
		return []Match{}
	}
	return found
}

// Closest returns the best candidate scoring at least DefaultCutoff, or ""
// when none does.
func Closest(query string, candidates []string) string {
	matches := CloseMatches(query, candidates, 1, DefaultCutoff)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// Ratio returns the similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func clamp(cutoff float64) float64 {
	switch {
	case cutoff < 0:
		return 0
	case cutoff > 1:
		return 1
	default:
		return cutoff
	}
}
