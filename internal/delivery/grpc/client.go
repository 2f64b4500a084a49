package grpc

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const callTimeout = 5 * time.Second

// CartClient calls CartService on a running storefront.
type CartClient struct {
	conn       *grpclib.ClientConn
	serviceKey string
	log        *logrus.Logger
}

func NewCartClient(target, serviceKey string, logger *logrus.Logger, opts ...grpclib.DialOption) (*CartClient, error) {
	logger.Infof("CartClient: Connecting to gRPC target: %s", target)
	opts = append([]grpclib.DialOption{
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpclib.NewClient(target, opts...)
	if err != nil {
		logger.Errorf("CartClient: Failed to create client for %s: %v", target, err)
		return nil, fmt.Errorf("failed to connect to cart service at %s: %w", target, err)
	}
	return &CartClient{conn: conn, serviceKey: serviceKey, log: logger}, nil
}

func (c *CartClient) Close() error {
	if c.conn != nil {
		c.log.Info("CartClient: Closing gRPC connection")
		return c.conn.Close()
	}
	return nil
}

func (c *CartClient) invoke(ctx context.Context, method string, req, resp interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	if c.serviceKey != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, ServiceKeyHeader, c.serviceKey)
	}

	if err := c.conn.Invoke(callCtx, method, req, resp); err != nil {
		c.log.Warnf("CartClient: %s failed: %v", method, err)
		return fromStatus(err)
	}
	return nil
}

func (c *CartClient) GetCartDetails(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, error) {
	var resp CartDetailsResponse
	if err := c.invoke(ctx, getCartDetailsMethod, &CartRequest{UserID: userID.String()}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

func (c *CartClient) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	var resp CheckoutResponse
	if err := c.invoke(ctx, checkoutMethod, &CartRequest{UserID: userID.String()}, &resp); err != nil {
		return nil, err
	}
	c.log.Infof("CartClient: Order %s placed for user %s", resp.Order.ID, userID)
	return &resp.Order, nil
}
