package detect

import "math"

// Detection policy constants. These come from the upstream requirement and
// are deliberately not run-time configuration.
const (
	// MinComparisons is the smallest network sample a purchase can be
	// judged against. Below it, no purchase is ever flagged.
	MinComparisons = 2

	// DeviationMultiplier scales the standard deviation in the threshold
	// test: flag iff amount > mean + DeviationMultiplier*sd.
	DeviationMultiplier = 3.0
)

// Stats carries the sample statistics a flagging decision was based on.
type Stats struct {
	Mean float64
	SD   float64
}

// Evaluate tests a purchase amount against the recent network amounts and
// reports whether it is anomalous. SD is the population standard deviation
// (divide by count, not count-1). With fewer than MinComparisons amounts
// the result is never a flag and the returned stats are zero.
func Evaluate(recent []float64, amount float64) (Stats, bool) {
	if len(recent) < MinComparisons {
		return Stats{}, false
	}

	n := float64(len(recent))
	var sum float64
	for _, v := range recent {
		sum += v
	}
	mean := sum / n

	var sqDev float64
	for _, v := range recent {
		d := v - mean
		sqDev += d * d
	}
	sd := math.Sqrt(sqDev / n)

	return Stats{Mean: mean, SD: sd}, amount > mean+DeviationMultiplier*sd
}
