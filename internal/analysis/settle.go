package analysis

import "gonum.org/v1/gonum/floats"

// SettlingTime returns the first time after which values stays at or below
// fraction of its peak for the rest of the series. ok is false when the
// series never settles or is empty.
func SettlingTime(times, values []float64, fraction float64) (float64, bool) {
	if len(values) == 0 || len(times) != len(values) {
		return 0, false
	}
	limit := floats.Max(values) * fraction

	settled := len(values)
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] > limit {
			break
		}
		settled = i
	}
	if settled == len(values) {
		return 0, false
	}
	return times[settled], true
}
