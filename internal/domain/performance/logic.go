package performance

import "math"

// OverallRating is the mean of the six dimensions rounded to one decimal.
func OverallRating(r Ratings) float64 {
	sum := r.Productivity + r.Quality + r.JobKnowledge + r.Communication + r.Teamwork + r.Initiative
	return math.Round(float64(sum)/6*10) / 10
}

// ValidateRatings checks every dimension is within the 1-5 scale.
func ValidateRatings(r Ratings) error {
	for _, value := range []int{r.Productivity, r.Quality, r.JobKnowledge, r.Communication, r.Teamwork, r.Initiative} {
		if value < RatingMin || value > RatingMax {
			return ErrRatingOutOfRange
		}
	}
	return nil
}
