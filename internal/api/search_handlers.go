package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelftalk/shelftalk-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over the book catalog with genre and year filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query     string `query:"q" required:"true" validate:"required,min=1,max=200" doc:"Search query"`
	Genres    string `query:"genres" validate:"omitempty,max=200" doc:"Comma-separated genres to filter by"`
	MinYear   int    `query:"min_year" validate:"omitempty,gte=0" doc:"Minimum published year"`
	MaxYear   int    `query:"max_year" validate:"omitempty,gte=0" doc:"Maximum published year"`
	Limit     int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset    int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
	SortBy    string `query:"sort" validate:"omitempty,oneof=relevance title author recent" doc:"Sort order (default relevance)"`
	SortOrder string `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort direction (default desc)"`
	Facets    bool   `query:"facets" doc:"Include genre facets in response"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID            string            `json:"id" doc:"Book ID"`
	Score         float64           `json:"score" doc:"Search relevance score"`
	Title         string            `json:"title" doc:"Book title"`
	Author        string            `json:"author" doc:"Author name"`
	PublishedYear int               `json:"published_year,omitempty" doc:"Year of publication"`
	Highlights    map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
	Genres []FacetCount      `json:"genres,omitempty" doc:"Genre facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.IncludeFacets = input.Facets

	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	// Genre filter - comma-separated values.
	if input.Genres != "" {
		for g := range strings.SplitSeq(input.Genres, ",") {
			g = strings.TrimSpace(g)
			if g != "" {
				params.Genres = append(params.Genres, g)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, huma.Error500InternalServerError("Search failed")
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = SearchHitResult{
			ID:            hit.ID,
			Score:         hit.Score,
			Title:         hit.Title,
			Author:        hit.Author,
			PublishedYear: hit.PublishedYear,
			Highlights:    hit.Highlights,
		}
	}

	genres := make([]FacetCount, len(result.Genres))
	for i, facet := range result.Genres {
		genres[i] = FacetCount{Value: facet.Value, Count: facet.Count}
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
			Genres: genres,
		},
	}, nil
}
