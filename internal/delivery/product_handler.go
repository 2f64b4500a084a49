package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(public, admin gin.IRouter) {
	products := public.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
	}

	manage := admin.Group("/products")
	{
		manage.POST("", h.CreateProduct)
		manage.PATCH("/:id", h.UpdateProduct)
		manage.DELETE("/:id", h.DeleteProduct)
		manage.PUT("/:id/colors", h.ReplaceColors)
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		respondError(c, h.log, "Failed to create product", err)
		return
	}

	h.log.Infof("Product created successfully: ID %s, Name %s", created.ID, created.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "product")
	if !ok {
		return
	}

	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "product")
	if !ok {
		return
	}

	var update domain.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warnf("Failed to bind JSON for update product %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.log, "Failed to update product", err)
		return
	}

	h.log.Infof("Product updated successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "product")
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to delete product", err)
		return
	}

	h.log.Infof("Product deleted successfully: ID %s", id)
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondError(c, h.log, "Invalid list parameters", err)
		return
	}

	page, err := h.useCase.ListProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve products", err)
		return
	}

	if len(page.Items) == 0 {
		SuccessResponse(c, http.StatusOK, "No products found", page)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", page)
}

type replaceColorsRequest struct {
	Colors []domain.ProductColor `json:"colors"`
}

func (h *ProductHandler) ReplaceColors(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "product")
	if !ok {
		return
	}

	var req replaceColorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for product %s colors: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	colors, err := h.useCase.ReplaceColors(c.Request.Context(), id, req.Colors)
	if err != nil {
		respondError(c, h.log, "Failed to save product colors", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product colors saved successfully", colors)
}
