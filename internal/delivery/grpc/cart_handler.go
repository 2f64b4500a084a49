package grpc

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

func (h *CartHandler) loadCart(ctx context.Context, userIDStr string) (*cart.Manager, error) {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.log.Warnf("gRPC Handler: Invalid user ID: %q", userIDStr)
		return nil, status.Error(codes.InvalidArgument, "invalid user ID")
	}
	m := cart.NewManager(h.store, userID, h.log)
	if err := m.Load(ctx); err != nil {
		return nil, toStatus(err)
	}
	return m, nil
}

func (h *CartHandler) GetCartDetails(ctx context.Context, req *CartRequest) (*CartDetailsResponse, error) {
	h.log.Infof("gRPC Handler: Received GetCartDetails request for user %s", req.UserID)
	m, err := h.loadCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &CartDetailsResponse{Cart: m.Snapshot()}, nil
}

func (h *CartHandler) Checkout(ctx context.Context, req *CartRequest) (*CheckoutResponse, error) {
	h.log.Infof("gRPC Handler: Received Checkout request for user %s", req.UserID)
	m, err := h.loadCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	order, err := h.checkout.Checkout(ctx, m)
	if err != nil {
		h.log.Errorf("gRPC Handler: Checkout failed for user %s: %v", req.UserID, err)
		return nil, toStatus(err)
	}
	h.log.Infof("gRPC Handler: Order %s placed for user %s", order.ID, req.UserID)
	return &CheckoutResponse{Order: *order}, nil
}
