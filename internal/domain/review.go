package domain

// Rating bounds for reviews. Ratings are whole stars.
const (
	MinRating = 1
	MaxRating = 5
)

// Comment length bounds for reviews, in bytes.
const (
	MinCommentLength = 3
	MaxCommentLength = 1000
)

// Review represents one user's review of one book.
// A user can review a given book at most once.
type Review struct {
	Entity
	BookID  string `json:"book_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"` // 1-5 stars
	Comment string `json:"comment"`
}

// AverageRating computes the mean rating over a set of reviews.
// Returns 0 for an empty slice.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
