package wellspring

import "math"

// Baseline normalization constants.
const (
	// StdDevFloor is the smallest standard deviation used as a z-score
	// denominator.
	StdDevFloor = 0.5

	// MinBaselineSamples is the history size below which a baseline is not valid.
	MinBaselineSamples = 3
)

// Baseline is the result of normalizing one value against its history.
type Baseline struct {
	ZScore float64 `json:"z_score"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Valid  bool    `json:"valid"`
}

// Normalize computes the z-score of current against the population mean and
// floored standard deviation of history. With fewer than MinBaselineSamples
// values the result is not valid and ZScore is 0.
func Normalize(current float64, history []float64) Baseline {
	if len(history) == 0 {
		return Baseline{StdDev: StdDevFloor}
	}

	mean, sd := meanStdDev(history)
	if sd < StdDevFloor || math.IsNaN(sd) {
		sd = StdDevFloor
	}

	b := Baseline{Mean: mean, StdDev: sd}
	if len(history) < MinBaselineSamples {
		return b
	}
	b.ZScore = (current - mean) / sd
	b.Valid = true
	return b
}

// meanStdDev returns the arithmetic mean and population standard deviation.
func meanStdDev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

func mean(xs []float64) float64 {
	m, _ := meanStdDev(xs)
	return m
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
