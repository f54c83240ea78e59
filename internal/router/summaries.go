package router

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mpavlovic/news-digest/internal/apperr"
	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/dto"
	"github.com/mpavlovic/news-digest/internal/storage"
	"github.com/mpavlovic/news-digest/pkg/pagination"
)

// DigestService runs one diverse summarization round.
type DigestService interface {
	GenerateDigest(ctx context.Context) (*domain.Summary, error)
}

type SummaryRouter struct {
	e        *echo.Echo
	digest   DigestService
	store    storage.SummaryStore
	searcher storage.SummarySearcher
	embedder Embedder
}

func NewSummaryRouter(
	e *echo.Echo,
	digest DigestService,
	store storage.SummaryStore,
	searcher storage.SummarySearcher,
	embedder Embedder,
) *SummaryRouter {
	return &SummaryRouter{
		e:        e,
		digest:   digest,
		store:    store,
		searcher: searcher,
		embedder: embedder,
	}
}

func (r *SummaryRouter) Bind() {
	r.e.POST("/summaries", r.createHandler)
	r.e.GET("/summaries", r.listHandler)
	r.e.GET("/summaries/search", r.searchHandler)
	r.e.GET("/summaries/:id", r.getHandler)
}

func (r *SummaryRouter) createHandler(c echo.Context) error {
	summary, err := r.digest.GenerateDigest(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.FromSummary(*summary))
}

func (r *SummaryRouter) listHandler(c echo.Context) error {
	page, err := pagination.FromParams(c.QueryParam("limit"), c.QueryParam("offset"))
	if err != nil {
		return apperr.NewValidationWrap("invalid pagination", err)
	}

	ctx := c.Request().Context()

	summaries, err := r.store.ListSummaries(ctx, storage.ListOptions{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return apperr.NewStorage("list summaries", err)
	}

	total, err := r.store.CountSummaries(ctx)
	if err != nil {
		return apperr.NewStorage("count summaries", err)
	}

	return c.JSON(http.StatusOK, dto.SummaryList{
		Total:     total,
		Offset:    page.Offset,
		Limit:     page.Limit,
		Summaries: dto.FromSummaries(summaries),
	})
}

func (r *SummaryRouter) getHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("invalid summary id", err)
	}

	summary, err := r.store.GetSummary(c.Request().Context(), id)
	if err != nil {
		return apperr.NewStorage("get summary", err)
	}
	if summary == nil {
		return apperr.NewNotFound("summary", id.String())
	}

	return c.JSON(http.StatusOK, dto.FromSummary(*summary))
}

func (r *SummaryRouter) searchHandler(c echo.Context) error {
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

	matches, err := r.searcher.NearestSummaries(ctx, vector, limit)
	if err != nil {
		return apperr.NewStorage("summary search", err)
	}

	return c.JSON(http.StatusOK, dto.SummarySearchResponse{
		Query:     query,
		Summaries: dto.FromSummaryMatches(matches),
	})
}
