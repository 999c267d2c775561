package domain

// Book represents a book in the catalog along with its review rollup.
type Book struct {
	Entity
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	CoverImage    string   `json:"cover_image,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PublishedYear int      `json:"published_year,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Reviews       []string `json:"reviews"`        // Review IDs attached to this book
	AverageRating float64  `json:"average_rating"` // Recomputed whenever Reviews changes
}

// HasReview returns true if the review ID is attached to this book.
func (b *Book) HasReview(reviewID string) bool {
	for _, id := range b.Reviews {
		if id == reviewID {
			return true
		}
	}
	return false
}

// AttachReview appends a review ID to the book's review list.
// Attaching an ID that is already present is a no-op.
func (b *Book) AttachReview(reviewID string) bool {
	if b.HasReview(reviewID) {
		return false
	}
	b.Reviews = append(b.Reviews, reviewID)
	return true
}

// DetachReview removes a review ID from the book's review list.
// Returns true if the ID was present.
func (b *Book) DetachReview(reviewID string) bool {
	for i, id := range b.Reviews {
		if id == reviewID {
			b.Reviews = append(b.Reviews[:i], b.Reviews[i+1:]...)
			return true
		}
	}
	return false
}
