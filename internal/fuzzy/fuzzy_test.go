package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseMatches(t *testing.T) {
	fruit := []string{"ape", "apple", "peach", "puppy"}
	tests := []struct {
		name       string
		query      string
		candidates []string
		n          int
		cutoff     float64
		want       []string
	}{
		{name: "empty query", query: "", candidates: fruit, n: 3, cutoff: 0.6, want: []string{}},
		{name: "no candidates", query: "appel", candidates: nil, n: 3, cutoff: 0.6, want: []string{}},
		{name: "zero limit", query: "appel", candidates: fruit, n: 0, cutoff: 0.6, want: []string{}},
		{name: "best first", query: "appel", candidates: fruit, n: 3, cutoff: 0.6, want: []string{"apple", "ape"}},
		{name: "limit truncates", query: "appel", candidates: fruit, n: 1, cutoff: 0.6, want: []string{"apple"}},
		{name: "limit above qualifying count", query: "appel", candidates: fruit, n: 10, cutoff: 0.6, want: []string{"apple", "ape"}},
		{name: "nothing above cutoff", query: "zzz", candidates: fruit, n: 3, cutoff: 0.6, want: []string{}},
		{name: "ties keep input order", query: "ab", candidates: []string{"ac", "xb", "ab"}, n: 3, cutoff: 0.5, want: []string{"ab", "ac", "xb"}},
		{name: "cutoff above one is clamped", query: "push", candidates: []string{"pull", "push"}, n: 3, cutoff: 7, want: []string{"push"}},
		{name: "negative cutoff keeps everything", query: "git", candidates: []string{"zz", "git"}, n: 5, cutoff: -1, want: []string{"git", "zz"}},
		{name: "empty candidate string", query: "ls", candidates: []string{"", "ls"}, n: 3, cutoff: 0.1, want: []string{"ls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CloseMatches(tt.query, tt.candidates, tt.n, tt.cutoff)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloseMatchesDeterministic(t *testing.T) {
	candidates := []string{"status", "stash", "stage", "show", "push", "pull", "shortlog", "switch"}
	first := CloseMatches("sttaus", candidates, 5, 0.3)
	require.NotEmpty(t, first)
	assert.Equal(t, "status", first[0])
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, CloseMatches("sttaus", candidates, 5, 0.3))
	}
}

func TestRankScores(t *testing.T) {
	got := Rank("appel", []string{"ape", "apple"}, 3, 0.6)
	require.Len(t, got, 2)
	assert.Equal(t, "apple", got[0].Value)
	assert.InDelta(t, 0.8, got[0].Score, 1e-9)
	assert.Equal(t, "ape", got[1].Value)
	assert.InDelta(t, 0.75, got[1].Score, 1e-9)
}

func TestClosest(t *testing.T) {
	assert.Equal(t, "push", Closest("psuh", []string{"pull", "push", "fetch"}))
	assert.Equal(t, "", Closest("qqqq", []string{"pull", "push"}))
	assert.Equal(t, "", Closest("", []string{"pull"}))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 1.0, Ratio("git", "git"))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.InDelta(t, 0.5, Ratio("ab", "ac"), 1e-9)
}
