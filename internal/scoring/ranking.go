package scoring

import (
	"sort"

	"github.com/google/uuid"
)

// DefaultTopN is the leaderboard size when the caller does not specify one
const DefaultTopN = 5

// RankedSubmission pairs a submission with its aggregate score for ranking
type RankedSubmission struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Result       Result    `json:"result"`
}

// TopN orders submissions by final score descending and returns the first n.
// Unscored submissions (Final == nil) sort after every scored one. Ties are
// broken by ascending submission id so repeated calls over the same data
// produce identical output. n <= 0 yields an empty slice.
func TopN(items []RankedSubmission, n int) []RankedSubmission {
	if n <= 0 {
		return []RankedSubmission{}
	}

	ranked := make([]RankedSubmission, len(items))
	copy(ranked, items)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.Result.Final == nil && b.Result.Final == nil:
			return a.SubmissionID.String() < b.SubmissionID.String()
		case a.Result.Final == nil:
			return false
		case b.Result.Final == nil:
			return true
		case *a.Result.Final != *b.Result.Final:
			return *a.Result.Final > *b.Result.Final
		default:
			return a.SubmissionID.String() < b.SubmissionID.String()
		}
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
