package reading

import "math"

// NextRating folds one more review into a running average. The result is
// rounded to one decimal, half away from zero; the first review sets the
// average outright.
func NextRating(current float64, count int, value int) (float64, int) {
	if count <= 0 {
		return float64(value), 1
	}
	mean := (current*float64(count) + float64(value)) / float64(count+1)
	return math.Round(mean*10) / 10, count + 1
}
