// Package search provides full-text search over the book catalog using Bleve.
// Books are indexed by title, author, and description with fuzzy matching
// and genre filtering.
package search

import (
	"github.com/shelftalk/shelftalk-server/internal/domain"
)

// Document is the structure stored in the Bleve index for a book.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`

	PublishedYear int `json:"published_year,omitempty"`

	// Timestamps for sorting, unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names (capitalized) by default, but the
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.PublishedYear > 0 {
		m["published_year"] = d.PublishedYear
	}

	return m
}

// FromBook converts a domain Book to a search Document.
func FromBook(book *domain.Book) *Document {
	return &Document{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Genres:        book.Genres,
		PublishedYear: book.PublishedYear,
		CreatedAt:     book.CreatedAt.UnixMilli(),
		UpdatedAt:     book.UpdatedAt.UnixMilli(),
	}
}
