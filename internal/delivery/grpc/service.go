package grpc

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/domain"

	grpclib "google.golang.org/grpc"
)

const (
	ServiceName = "storefront.CartService"

	getCartDetailsMethod = "/" + ServiceName + "/GetCartDetails"
	checkoutMethod       = "/" + ServiceName + "/Checkout"
)

type CartRequest struct {
	UserID string `json:"user_id"`
}

type CartDetailsResponse struct {
	Cart cart.Snapshot `json:"cart"`
}

type CheckoutResponse struct {
	Order domain.Order `json:"order"`
}

// CartServiceServer is served for internal callers holding the service key.
type CartServiceServer interface {
	GetCartDetails(ctx context.Context, req *CartRequest) (*CartDetailsResponse, error)
	Checkout(ctx context.Context, req *CartRequest) (*CheckoutResponse, error)
}

var CartServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "GetCartDetails", Handler: getCartDetailsHandler},
		{MethodName: "Checkout", Handler: checkoutHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "storefront/cart_service",
}

func getCartDetailsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(CartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).GetCartDetails(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: getCartDetailsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).GetCartDetails(ctx, req.(*CartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkoutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(CartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).Checkout(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: checkoutMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).Checkout(ctx, req.(*CartRequest))
	}
	return interceptor(ctx, in, info, handler)
}
