package sensor

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestScore bounds how far off a name may be and still be suggested
const maxSuggestScore = 103

// suggestName returns the library name closest to query, or "" when
// nothing is close enough to be a plausible typo.
func suggestName(query string, names []string) string {
	if query == "" || len(names) == 0 {
		return ""
	}
	query = strings.ToLower(query)

	type rankedName struct {
		name  string
		score int
	}

	ranked := make([]rankedName, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, rankedName{name: name, score: matchScore(strings.ToLower(name), query)})
	}

	// Sort by score (lower is better), then name for stable output
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	if ranked[0].score > maxSuggestScore {
		return ""
	}
	return ranked[0].name
}

// matchScore ranks a lowercased name against a lowercased query.
// Lower score = better match
func matchScore(name, query string) int {
	// Case-only difference is best
	if name == query {
		return 0
	}

	// Prefix match is very good
	if strings.HasPrefix(name, query) {
		return 10
	}

	// Subsequence match ("tv" in "tv shows", "mvs" in "movies")
	if fuzzy.MatchFold(query, name) {
		return 50
	}

	return 100 + fuzzy.LevenshteinDistance(query, name)
}
