package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mpavlovic/news-digest/internal/apperr"
	"github.com/mpavlovic/news-digest/internal/dto"
	"github.com/mpavlovic/news-digest/internal/storage"
	"github.com/mpavlovic/news-digest/pkg/pagination"
)

type ArticleRouter struct {
	e     *echo.Echo
	store storage.ArticleStore
}

func NewArticleRouter(e *echo.Echo, store storage.ArticleStore) *ArticleRouter {
	return &ArticleRouter{
		e:     e,
		store: store,
	}
}

func (r *ArticleRouter) Bind() {
	r.e.GET("/articles", r.listHandler)
	r.e.GET("/articles/:id", r.getHandler)
}

func (r *ArticleRouter) listHandler(c echo.Context) error {
	page, err := pagination.FromParams(c.QueryParam("limit"), c.QueryParam("offset"))
	if err != nil {
		return apperr.NewValidationWrap("invalid pagination", err)
	}

	filter := storage.ArticleFilter{Source: c.QueryParam("source")}
	ctx := c.Request().Context()

	articles, err := r.store.ListArticles(ctx, filter, storage.ListOptions{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return apperr.NewStorage("list articles", err)
	}

	total, err := r.store.CountArticles(ctx, filter)
	if err != nil {
		return apperr.NewStorage("count articles", err)
	}

	return c.JSON(http.StatusOK, dto.ArticleList{
		Total:    total,
		Offset:   page.Offset,
		Limit:    page.Limit,
		Articles: dto.FromArticles(articles),
	})
}

func (r *ArticleRouter) getHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("invalid article id", err)
	}

	article, err := r.store.GetArticle(c.Request().Context(), id)
	if err != nil {
		return apperr.NewStorage("get article", err)
	}
	if article == nil {
		return apperr.NewNotFound("article", id.String())
	}

	return c.JSON(http.StatusOK, dto.FromArticle(*article))
}
