package delivery

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	store    domain.CartRepository
	checkout *checkout.Service
	log      *logrus.Logger
}

func NewCartHandler(store domain.CartRepository, checkoutService *checkout.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		store:    store,
		checkout: checkoutService,
		log:      logger,
	}
}

func (h *CartHandler) RegisterRoutes(session gin.IRouter) {
	items := session.Group("/cart")
	{
		items.GET("", h.GetCart)
		items.DELETE("", h.ClearCart)
		items.POST("/items", h.AddItem)
		items.PATCH("/items/:id", h.UpdateItem)
		items.DELETE("/items/:id", h.RemoveItem)
	}
	session.POST("/checkout", h.Checkout)
}

// loadCart builds the caller's cart manager and loads it from the store.
func (h *CartHandler) loadCart(c *gin.Context) (*cart.Manager, bool) {
	info := currentSession(c)
	m := cart.NewManager(h.store, info.Profile.ID, h.log)
	if err := m.Load(c.Request.Context()); err != nil {
		respondError(c, h.log, "Failed to load cart", err)
		return nil, false
	}
	return m, true
}

func (h *CartHandler) GetCart(c *gin.Context) {
	m, ok := h.loadCart(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", m.Snapshot())
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for add to cart: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, ok := h.loadCart(c)
	if !ok {
		return
	}
	if _, err := m.Add(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		respondError(c, h.log, "Failed to add item to cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", m.Snapshot())
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "cart item")
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for cart item %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, ok := h.loadCart(c)
	if !ok {
		return
	}
	if err := m.UpdateQuantity(c.Request.Context(), id, *req.Quantity); err != nil {
		respondError(c, h.log, "Failed to update cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated successfully", m.Snapshot())
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "cart item")
	if !ok {
		return
	}

	m, ok := h.loadCart(c)
	if !ok {
		return
	}
	if err := m.Remove(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to remove cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", m.Snapshot())
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	m := cart.NewManager(h.store, currentSession(c).Profile.ID, h.log)
	if err := m.Clear(c.Request.Context()); err != nil {
		respondError(c, h.log, "Failed to clear cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared", m.Snapshot())
}

// Checkout places an order for the caller's cart and returns it as the
// confirmation.
func (h *CartHandler) Checkout(c *gin.Context) {
	m, ok := h.loadCart(c)
	if !ok {
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), m)
	if err != nil {
		respondError(c, h.log, "Failed to place order", err)
		return
	}

	h.log.Infof("Order %s placed by user %s", order.ID, order.UserID)
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", order)
}
