package usecase

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderUseCase interface {
	// GetOrder returns the order when requester owns it or is an admin.
	GetOrder(ctx context.Context, requester domain.Profile, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params domain.ListParams) (domain.Page[domain.Order], error)
	ListOrders(ctx context.Context, params domain.ListParams) (domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type orderUseCase struct {
	orderRepo       domain.OrderRepository
	defaultPageSize int
	log             *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, defaultPageSize int, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		orderRepo:       repo,
		defaultPageSize: defaultPageSize,
		log:             logger,
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, requester domain.Profile, id uuid.UUID) (*domain.Order, error) {
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to get order %s: %v", id, err)
		return nil, err
	}
	if order.UserID != requester.ID && !requester.IsAdmin {
		uc.log.Warnf("Use Case: User %s attempted to read order %s of user %s", requester.ID, id, order.UserID)
		return nil, domain.NotFound("order", id)
	}
	return order, nil
}

func (uc *orderUseCase) ListUserOrders(ctx context.Context, userID uuid.UUID, params domain.ListParams) (domain.Page[domain.Order], error) {
	params.UserID = &userID
	return uc.list(ctx, params)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, params domain.ListParams) (domain.Page[domain.Order], error) {
	return uc.list(ctx, params)
}

func (uc *orderUseCase) list(ctx context.Context, params domain.ListParams) (domain.Page[domain.Order], error) {
	params = params.Normalize(uc.defaultPageSize)
	if params.Status != "" && !domain.IsValidStatus(params.Status) {
		return domain.Page[domain.Order]{}, domain.Invalid("invalid order status: %s", params.Status)
	}
	if params.Sort == "" {
		params.Sort = "created_at"
		params.Desc = true
	}

	orders, total, err := uc.orderRepo.ListOrders(ctx, params)
	if err != nil {
		uc.log.Errorf("Use Case: Error listing orders: %v", err)
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(orders, total, params), nil
}

func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	uc.log.Infof("Use Case: Attempting to update order %s status to %s", id, status)
	if !domain.IsValidStatus(status) {
		uc.log.Warnf("Use Case: Invalid status '%s' provided for order %s", status, id)
		return nil, domain.Invalid("invalid order status: %s", status)
	}

	current, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to get order %s for status update: %v", id, err)
		return nil, err
	}
	if !domain.CanTransition(current.Status, status) {
		uc.log.Warnf("Use Case: Refused transition of order %s from %s to %s", id, current.Status, status)
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", domain.ErrInvalidStatusTransition, current.Status, status)
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := uc.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update status for order %s: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %s status updated to %s", id, status)
	return updated, nil
}
