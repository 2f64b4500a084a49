package delivery

import (
	"fmt"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(session, admin gin.IRouter) {
	orders := session.Group("/orders")
	{
		orders.GET("", h.ListOwnOrders)
		orders.GET("/:id", h.GetOrderByID)
	}

	manage := admin.Group("/orders")
	{
		manage.GET("", h.ListOrders)
		manage.GET("/:id", h.GetOrderByID)
		manage.PATCH("/:id", h.UpdateOrderStatus)
	}
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "order")
	if !ok {
		return
	}
	requester := currentSession(c).Profile
	h.log.Infof("User %s requesting order details for Order ID: %s", requester.ID, id)

	order, err := h.useCase.GetOrder(c.Request.Context(), requester, id)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOwnOrders(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondError(c, h.log, "Invalid list parameters", err)
		return
	}
	userID := currentSession(c).Profile.ID

	page, err := h.useCase.ListUserOrders(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve orders", err)
		return
	}

	h.log.Infof("Retrieved %d orders for user %s", len(page.Items), userID)
	if page.Total == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found for this user", page)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", page)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondError(c, h.log, "Invalid list parameters", err)
		return
	}

	page, err := h.useCase.ListOrders(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", page)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "order")
	if !ok {
		return
	}

	var updateRequest struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&updateRequest); err != nil {
		h.log.Warnf("Failed to bind JSON for update order %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if updateRequest.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}
	if !domain.IsValidStatus(*updateRequest.Status) {
		ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: invalid status value '%s'", *updateRequest.Status))
		return
	}

	updated, err := h.useCase.UpdateOrderStatus(c.Request.Context(), id, *updateRequest.Status)
	if err != nil {
		respondError(c, h.log, "Failed to update order status", err)
		return
	}

	h.log.Infof("Order status updated successfully for ID %s", updated.ID)
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", updated)
}
