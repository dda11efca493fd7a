package domain

import "math"

// Review is a shopper rating of an item. Only approved reviews count.
type Review struct {
	ItemID   string
	Rating   int
	Approved bool
}

// AverageRating is the mean of the ratings rounded to one decimal, 0 when empty.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RoundRating(float64(sum) / float64(len(ratings)))
}

// RoundRating rounds an average to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
