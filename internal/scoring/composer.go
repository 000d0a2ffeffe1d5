// Package scoring turns the component scores of a candidate (ATS, automated
// test, HR review) into one composite final score and a shortlisting
// decision. Compose is a pure function so results are reproducible in tests.
package scoring

import (
	"fmt"

	"github.com/jobsai/shortlister/internal/candidate"
)

const (
	DefaultATSWeight          = 0.4
	DefaultMCQWeight          = 0.4
	DefaultHRWeight           = 0.2
	DefaultShortlistThreshold = 7.0
)

// Weights configures the composite score. The values do not need to sum to
// one; composition normalizes by the sum of the weights that participate.
//
// Components that have not been scored yet (nil MCQ/HR) are excluded and the
// remaining weights renormalized, so a candidate is never penalized for a
// test that was not sent or a review that has not happened.
type Weights struct {
	ATS float64 `mapstructure:"ats"`
	MCQ float64 `mapstructure:"mcq"`
	HR  float64 `mapstructure:"hr"`

	// ShortlistThreshold is the minimum final score (0..10) for a
	// candidate to be shortlisted.
	ShortlistThreshold float64 `mapstructure:"shortlist-threshold"`
}

// DefaultWeights returns the stock configuration: ATS 40%, test 40%, HR 20%,
// shortlist at 7.0.
func DefaultWeights() Weights {
	return Weights{
		ATS:                DefaultATSWeight,
		MCQ:                DefaultMCQWeight,
		HR:                 DefaultHRWeight,
		ShortlistThreshold: DefaultShortlistThreshold,
	}
}

// Validate rejects weight sets that cannot produce a meaningful score.
func (w Weights) Validate() error {
	if w.ATS < 0 || w.MCQ < 0 || w.HR < 0 {
		return fmt.Errorf("score weights must not be negative")
	}
	if w.ATS+w.MCQ+w.HR <= 0 {
		return fmt.Errorf("at least one score weight must be positive")
	}
	if w.ShortlistThreshold < 0 || w.ShortlistThreshold > 10 {
		return fmt.Errorf("shortlist threshold must be within [0,10]")
	}
	return nil
}

// Compose combines the component scores into a final score on the 0..10
// scale. ats is 0..100, mcq 0..100 (nil when the test has not completed), hr
// 0..10 (nil when not reviewed). The result is monotonic non-decreasing in
// every component and clamped to [0,10].
func (w Weights) Compose(ats float64, mcq, hr *float64) float64 {
	type component struct {
		weight     float64
		normalized float64
	}

	parts := []component{{w.ATS, clamp(ats, 0, 100) / 100}}
	if mcq != nil {
		parts = append(parts, component{w.MCQ, clamp(*mcq, 0, 100) / 100})
	}
	if hr != nil {
		parts = append(parts, component{w.HR, clamp(*hr, 0, 10) / 10})
	}

	var sum, total float64
	for _, part := range parts {
		sum += part.weight * part.normalized
		total += part.weight
	}
	if total <= 0 {
		return 0
	}

	return clamp(round2(sum/total*10), 0, 10)
}

// Shortlisted applies the configured threshold to a final score.
func (w Weights) Shortlisted(final float64) bool {
	return final >= w.ShortlistThreshold
}

// Recompose recomputes the derived fields of a record from its current
// component scores. Stores call it on every write (recompute-on-write), so a
// read never observes a final score stale relative to its inputs.
func (w Weights) Recompose(c *candidate.Candidate) {
	c.FinalScore = w.Compose(c.ATSScore, c.MCQScore, c.HRScore)
	c.IsShortlisted = w.Shortlisted(c.FinalScore)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
