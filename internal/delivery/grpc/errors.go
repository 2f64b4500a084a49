package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC status codes. Internal failures
// keep their detail out of the message.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrUnauthorized):
		code = codes.Unauthenticated
	case errors.Is(err, domain.ErrForbidden):
		code = codes.PermissionDenied
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

var preconditionErrors = []error{
	domain.ErrEmptyCart,
	domain.ErrInsufficientStock,
	domain.ErrInvalidStatusTransition,
}

// fromStatus turns a status returned by the server back into a domain error.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("failed to communicate with cart service: %w", err)
	}
	msg := st.Message()
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case codes.FailedPrecondition:
		for _, sentinel := range preconditionErrors {
			if strings.HasPrefix(msg, sentinel.Error()) {
				return fmt.Errorf("%w (%s)", sentinel, msg)
			}
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, msg)
	case codes.DeadlineExceeded:
		return fmt.Errorf("cart service: %w", context.DeadlineExceeded)
	default:
		return fmt.Errorf("cart service gRPC error (%s): %s", st.Code(), msg)
	}
}
