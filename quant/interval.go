package quant

import (
	"fmt"
	"math"
)

// Interval is a closed range of real values. An interval with its lower
// bound above its upper bound is empty and contains nothing.
type Interval struct {
	lower, upper float64
}

func EmptyInterval() Interval {
	return Interval{math.Inf(1), math.Inf(-1)}
}

func UnboundedInterval() Interval {
	return Interval{math.Inf(-1), math.Inf(1)}
}

func NewInterval(lower, upper float64) Interval {
	return Interval{lower, upper}
}

func (i Interval) Lower() float64 { return i.lower }
func (i Interval) Upper() float64 { return i.upper }

func (i Interval) Empty() bool {
	return i.lower > i.upper
}

func (i Interval) Size() float64 {
	return i.upper - i.lower
}

func (i Interval) Contains(x float64) bool {
	return x >= i.lower && x <= i.upper
}

func (i Interval) Extend(x float64) Interval {
	return Interval{math.Min(i.lower, x), math.Max(i.upper, x)}
}

// Clamp returns x limited to the interval.
func (i Interval) Clamp(x float64) float64 {
	return math.Max(i.lower, math.Min(i.upper, x))
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.lower, i.upper)
}
