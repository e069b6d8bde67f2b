package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/service"
)

type ArticleHandler struct {
	svc *service.ArticleService
}

func NewArticleHandler(svc *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// queryInt parses an integer query parameter; anything unparsable is 0 and
// falls back to the service default.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// ListArticles godoc
// @Summary List articles visible to the caller
// @Description Anonymous callers see published articles only. Authenticated callers also see their own drafts; admins see everything.
// @Tags articles
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param status query string false "Filter by status" Enums(DRAFT, PUBLISHED)
// @Success 200 {object} Response{data=service.ArticlePage}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), auth.Identity(c), service.ListRequest{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Status: models.ArticleStatus(c.Query("status")),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Articles retrieved successfully", page)
}

// GetArticle godoc
// @Summary Get an article by ID
// @Tags articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} Response{data=models.Article}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /articles/{id} [get]
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, valid := pathID(c, "article")
	if !valid {
		return
	}

	article, err := h.svc.Get(c.Request.Context(), auth.Identity(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Article retrieved successfully", article)
}

// CreateArticle godoc
// @Summary Create an article
// @Tags articles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param article body service.CreateArticle true "Article"
// @Success 201 {object} Response{data=models.Article}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req service.CreateArticle
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.svc.Create(c.Request.Context(), auth.Identity(c), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Article created successfully", article)
}

// UpdateArticle godoc
// @Summary Update an article
// @Description Partial update; omitted fields are left unchanged.
// @Tags articles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param article body service.UpdateArticle true "Fields to change"
// @Success 200 {object} Response{data=models.Article}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /articles/{id} [put]
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, valid := pathID(c, "article")
	if !valid {
		return
	}
	var req service.UpdateArticle
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.svc.Update(c.Request.Context(), auth.Identity(c), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Article updated successfully", article)
}

// DeleteArticle godoc
// @Summary Delete an article (admin only)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} Response{data=MessageData}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /articles/{id} [delete]
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, valid := pathID(c, "article")
	if !valid {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.Identity(c), id); err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Article deleted successfully", MessageData{Message: "Article deleted successfully"})
}
