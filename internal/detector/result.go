package detector

import (
	"github.com/aksumit1/BudgetBuddy-backend-sub006/internal/models"
)

// Classification is the per-candidate outcome of a detection run.
type Classification int

const (
	// ClassificationNoMatch means no duplicate signal was found; the
	// candidate imports normally
	ClassificationNoMatch Classification = iota

	// ClassificationSkip means the candidate is a certain duplicate and
	// should be silently filtered from import
	ClassificationSkip

	// ClassificationMatches means one or more probable duplicates were
	// found and should be surfaced for user review
	ClassificationMatches
)

// String returns a human-readable classification name
func (c Classification) String() string {
	switch c {
	case ClassificationNoMatch:
		return "no_match"
	case ClassificationSkip:
		return "skip"
	case ClassificationMatches:
		return "matches"
	default:
		return "unknown"
	}
}

// MatchCandidate pairs an existing transaction with the similarity
// score and reasons it earned against a batch candidate.
type MatchCandidate struct {
	Existing *models.ExistingTransaction `json:"existing"`
	Score    float64                     `json:"score"`
	Reasons  []string                    `json:"reasons"`
}

// Result is the classification of a single batch candidate. Matches is
// non-empty exactly when Classification is ClassificationMatches, and
// is sorted by score descending.
type Result struct {
	Classification Classification   `json:"classification"`
	Matches        []MatchCandidate `json:"matches,omitempty"`
}

// ResultSet maps zero-based batch indices to their results. Indices
// classified as no-match are absent from the map.
type ResultSet map[int]Result

// Classify returns the classification for a batch index, treating an
// absent index as no-match.
func (rs ResultSet) Classify(index int) Classification {
	result, ok := rs[index]
	if !ok {
		return ClassificationNoMatch
	}
	return result.Classification
}

// Skipped returns the batch indices classified as certain duplicates,
// in no particular order.
func (rs ResultSet) Skipped() []int {
	var indices []int
	for i, result := range rs {
		if result.Classification == ClassificationSkip {
			indices = append(indices, i)
		}
	}
	return indices
}

// MatchLists flattens the result set into the index-to-match-list shape
// used by batch import callers: an absent index means no duplicate
// signal, a present empty list means a certain duplicate to filter out,
// and a present non-empty list means probable duplicates for review.
func (rs ResultSet) MatchLists() map[int][]MatchCandidate {
	lists := make(map[int][]MatchCandidate, len(rs))
	for i, result := range rs {
		switch result.Classification {
		case ClassificationSkip:
			lists[i] = []MatchCandidate{}
		case ClassificationMatches:
			lists[i] = result.Matches
		}
	}
	return lists
}
