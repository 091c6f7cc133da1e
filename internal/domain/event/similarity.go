package event

import (
	"sort"
)

// Similar events limits and weights
const (
	SimilarEventsLimit = 5

	categoryWeight = 3
	themeWeight    = 2
	formatWeight   = 1
)

// SimilarityScore rates how close candidate is to base
func SimilarityScore(base, candidate *Event) int {
	score := 0
	if base.CategoryID != nil && candidate.CategoryID != nil && *base.CategoryID == *candidate.CategoryID {
		score += categoryWeight
	}
	if base.Theme == candidate.Theme {
		score += themeWeight
	}
	if base.Format == candidate.Format {
		score += formatWeight
	}
	return score
}

// RankSimilar orders candidates by score, highest first. Candidates with
// equal scores keep their incoming order, which is date ascending.
func RankSimilar(base *Event, candidates []*Event) []*Event {
	ranked := make([]*Event, 0, len(candidates))
	scores := make(map[*Event]int, len(candidates))
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		ranked = append(ranked, c)
		scores[c] = SimilarityScore(base, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	return ranked
}
