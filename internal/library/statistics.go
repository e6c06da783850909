package library

import (
	"fmt"
	"math"
	"strconv"

	"github.com/binhbb2204/BookHub/pkg/models"
)

const (
	MinRating = 1
	MaxRating = 5

	// DefaultRecommendThreshold counts a rating of 4 or 5 stars as a
	// recommendation.
	DefaultRecommendThreshold = 4
)

// Tally maps a star value to the number of ratings with that value.
type Tally map[int]int

// ZeroStatistics is the statistics of a book nobody has rated.
func ZeroStatistics() models.RatingStatistics {
	perc := make(map[string]int, MaxRating)
	for v := MinRating; v <= MaxRating; v++ {
		perc[strconv.Itoa(v)] = 0
	}
	return models.RatingStatistics{IndividualPerc: perc}
}

// Aggregate reduces a tally to average, recommendation share and per-star
// percentages. It fails on a tally that cannot come from valid ratings.
func Aggregate(t Tally, threshold int) (models.RatingStatistics, error) {
	if threshold < MinRating || threshold > MaxRating {
		return models.RatingStatistics{}, aggregationFailure(fmt.Sprintf("recommend threshold %d out of range", threshold), nil)
	}

	var count, sum, recommended int
	for star, n := range t {
		if star < MinRating || star > MaxRating {
			return models.RatingStatistics{}, aggregationFailure(fmt.Sprintf("rating value %d out of range", star), nil)
		}
		if n < 0 {
			return models.RatingStatistics{}, aggregationFailure(fmt.Sprintf("negative count for %d stars", star), nil)
		}
		count += n
		sum += star * n
		if star >= threshold {
			recommended += n
		}
	}

	stats := ZeroStatistics()
	if count == 0 {
		return stats, nil
	}

	total := float64(count)
	stats.AvgRating = round2(float64(sum) / total)
	stats.ReviewCount = count
	stats.Recommendation = round2(float64(recommended) / total * 100)
	for star, n := range t {
		// floor(n / count * 100), computed on integers
		stats.IndividualPerc[strconv.Itoa(star)] = n * 100 / count
	}

	return stats, nil
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
