package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(public, admin gin.IRouter) {
	categories := public.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)
	}

	manage := admin.Group("/categories")
	{
		manage.POST("", h.CreateCategory)
		manage.PATCH("/:id", h.UpdateCategory)
		manage.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		h.log.Errorf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		respondError(c, h.log, "Failed to create category", err)
		return
	}

	h.log.Infof("Category created successfully: ID %s, Name %s", created.ID, created.Name)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "category")
	if !ok {
		return
	}

	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

type updateCategoryRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
}

// UpdateCategory edits the category and optionally moves products into it.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "category")
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for update category %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve category for update", err)
		return
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), category, req.ProductIDs)
	if err != nil {
		respondError(c, h.log, "Failed to update category", err)
		return
	}

	h.log.Infof("Category updated successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "category")
	if !ok {
		return
	}

	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to delete category", err)
		return
	}

	h.log.Infof("Category deleted successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondError(c, h.log, "Invalid list parameters", err)
		return
	}

	page, err := h.useCase.ListCategories(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve categories", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", page)
}
