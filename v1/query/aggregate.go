package query

import (
	"fmt"
	"math"
	"strings"
)

// Aggregate selects the statistic computed over a numeric property.
type Aggregate int

const (
	// Count counts matching records; it needs no property.
	Count Aggregate = iota
	Sum
	Average
	StandardDeviationSample
	StandardDeviationPopulation
)

var aggregateNames = [...]string{"Count", "Sum", "Average", "StandardDeviationSample", "StandardDeviationPopulation"}

func (a Aggregate) String() string {
	if a < 0 || int(a) >= len(aggregateNames) {
		return fmt.Sprintf("Aggregate(%d)", int(a))
	}
	return aggregateNames[a]
}

// ParseAggregate parses the output of Aggregate.String, case-insensitively.
func ParseAggregate(s string) (Aggregate, error) {
	for i, name := range aggregateNames {
		if strings.EqualFold(s, name) {
			return Aggregate(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAggregate, s)
}

// Accumulator computes an Aggregate in one pass using Welford's update.
type Accumulator struct {
	agg  Aggregate
	n    int
	sum  float64
	mean float64
	m2   float64
}

// NewAccumulator returns an empty accumulator for agg.
func NewAccumulator(agg Aggregate) *Accumulator {
	return &Accumulator{agg: agg}
}

// Add records one value. For Count the value is ignored.
func (a *Accumulator) Add(x float64) {
	a.n++
	a.sum += x
	d := x - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (x - a.mean)
}

// N is the number of values added.
func (a *Accumulator) N() int { return a.n }

// Result returns the statistic. Count always has a result, 0 when nothing
// was added; the other statistics report false when they are undefined for
// the values seen.
func (a *Accumulator) Result() (float64, bool) {
	switch a.agg {
	case Count:
		return float64(a.n), true
	case Sum:
		return a.sum, a.n > 0
	case Average:
		if a.n == 0 {
			return 0, false
		}
		return a.sum / float64(a.n), true
	case StandardDeviationSample:
		if a.n < 2 {
			return 0, false
		}
		return math.Sqrt(a.m2 / float64(a.n-1)), true
	case StandardDeviationPopulation:
		if a.n == 0 {
			return 0, false
		}
		return math.Sqrt(a.m2 / float64(a.n)), true
	}
	return 0, false
}

// Group is one partition of a grouped aggregate. Key is the grouping value;
// Value is meaningful only when HasValue is set.
type Group struct {
	Key      any
	Value    float64
	HasValue bool
	Count    int
}
