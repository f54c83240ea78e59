// Package router binds the HTTP endpoints. Handlers translate wire
// parameters, delegate to the domain services, and return typed errors for
// the global handler to map.
package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mpavlovic/news-digest/internal/apperr"
	"github.com/mpavlovic/news-digest/internal/dto"
	"github.com/mpavlovic/news-digest/internal/storage"
	"github.com/mpavlovic/news-digest/pkg/pagination"
)

const defaultSearchLimit = 10

// Embedder encodes free text queries into the shared vector space.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type SearchRouter struct {
	e        *echo.Echo
	embedder Embedder
	searcher storage.ArticleSearcher
}

func NewSearchRouter(e *echo.Echo, embedder Embedder, searcher storage.ArticleSearcher) *SearchRouter {
	return &SearchRouter{
		e:        e,
		embedder: embedder,
		searcher: searcher,
	}
}

func (r *SearchRouter) Bind() {
	r.e.GET("/search", r.searchHandler)
}

func (r *SearchRouter) searchHandler(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return apperr.NewValidation("query parameter is required")
	}

	limit, err := parseSearchLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	vector := r.embedder.Embed(ctx, query)

	matches, err := r.searcher.NearestArticles(ctx, storage.NearestQuery{
		Vector: vector,
		K:      &limit,
		Source: c.QueryParam("source"),
	})
	if err != nil {
		return apperr.NewStorage("article search", err)
	}

	return c.JSON(http.StatusOK, dto.SearchResponse{
		Query:    query,
		Articles: dto.FromArticleMatches(matches),
	})
}

func parseSearchLimit(raw string) (int, error) {
	if raw == "" {
		return defaultSearchLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, apperr.NewValidation("limit must be a positive integer")
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	return limit, nil
}
