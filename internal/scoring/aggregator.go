package scoring

import (
	"math"
	"time"
)

// Bounds carries the score-scale constants. Admin evaluations are scored out
// of AdminMax and the automated evaluation out of AIMax; the final score is
// the sum, so AdminMax+AIMax is the ceiling of the 100-point scale. Bounds
// are injected from configuration so tests can run with any scale.
type Bounds struct {
	AdminMax float64
	AIMax    float64
}

// DefaultBounds returns the production scale: admins score out of 75, the
// automated evaluation out of 25.
func DefaultBounds() Bounds {
	return Bounds{AdminMax: 75, AIMax: 25}
}

// MaxFinal returns the ceiling of the combined final score
func (b Bounds) MaxFinal() float64 {
	return b.AdminMax + b.AIMax
}

// RaterScore is one evaluation's contribution to a submission's final score.
// Weight is the issuing admin's voting power and is ignored for the
// automated evaluation. UpdatedAt disambiguates duplicate automated rows:
// the most recently upserted one is authoritative.
type RaterScore struct {
	Score     float64
	Weight    float64
	Automated bool
	UpdatedAt time.Time
}

// Result is the aggregate score reported to every consumer (detail view,
// leaderboard, PDF export). Final is nil when the submission has no
// evaluations at all: "unscored" is a distinct state, never a zero.
type Result struct {
	AdminComponent     float64  `json:"admin_component"`
	AutomatedComponent float64  `json:"automated_component"`
	Final              *float64 `json:"final_score"`
	RaterCount         int      `json:"rater_count"`
	HasAutomated       bool     `json:"has_automated"`
}

// Aggregator computes final scores from raw evaluations. It is pure and
// safe for concurrent use; every call recomputes from the evaluations it
// is handed, so results always reflect the state read by the caller.
type Aggregator struct {
	bounds Bounds
}

// NewAggregator creates an aggregator with the given score bounds
func NewAggregator(bounds Bounds) *Aggregator {
	return &Aggregator{bounds: bounds}
}

// Bounds returns the score bounds the aggregator was built with
func (a *Aggregator) Bounds() Bounds {
	return a.bounds
}

// Aggregate combines a submission's evaluations into one bounded score.
//
// Admin evaluations are averaged with each rater's weight:
// sum(score*weight)/sum(weight), 0 when the total weight is 0. The
// automated evaluation contributes at fixed scale. The two components are
// additive, so the final score stays within [0, AdminMax+AIMax] for valid
// inputs. Components are rounded to 2 decimal places only at the edge;
// accumulation runs at full precision.
func (a *Aggregator) Aggregate(evals []RaterScore) Result {
	var (
		weightedSum float64
		totalWeight float64
		raterCount  int

		automatedScore float64
		automatedAt    time.Time
		hasAutomated   bool
	)

	for _, e := range evals {
		if e.Automated {
			if !hasAutomated || e.UpdatedAt.After(automatedAt) {
				automatedScore = e.Score
				automatedAt = e.UpdatedAt
			}
			hasAutomated = true
			continue
		}
		weightedSum += e.Score * e.Weight
		totalWeight += e.Weight
		raterCount++
	}

	var adminScore float64
	if raterCount > 0 && totalWeight > 0 {
		adminScore = weightedSum / totalWeight
	}

	result := Result{
		AdminComponent:     Round2(adminScore),
		AutomatedComponent: Round2(automatedScore),
		RaterCount:         raterCount,
		HasAutomated:       hasAutomated,
	}

	if raterCount == 0 && !hasAutomated {
		return result
	}

	var automated float64
	if hasAutomated {
		automated = automatedScore
	}
	final := Round2(adminScore + automated)
	result.Final = &final

	return result
}

// Round2 rounds to 2 decimal places for display
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
