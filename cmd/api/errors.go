package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

// errorDomain is attached to every ErrorInfo detail so clients can tell
// domain rejections apart from transport failures.
const errorDomain = "chest.v1"

var kindCodes = map[service.Kind]codes.Code{
	service.KindValidation:    codes.InvalidArgument,
	service.KindAuthorization: codes.PermissionDenied,
	service.KindState:         codes.FailedPrecondition,
	service.KindNotFound:      codes.NotFound,
	service.KindConflict:      codes.AlreadyExists,
}

// toStatus converts an error returned by the service into a gRPC status error.
// Domain errors keep their message and carry their code as ErrorInfo.Reason;
// anything unexpected is logged and reported as Internal.
func toStatus(log zerolog.Logger, method string, err error) error {
	if err == nil {
		return nil
	}

	var derr *service.Error
	if errors.As(err, &derr) {
		code, ok := kindCodes[derr.Kind]
		if !ok {
			code = codes.Internal
		}
		st := status.New(code, derr.Message)
		if detailed, dErr := st.WithDetails(&errdetails.ErrorInfo{Reason: derr.Code, Domain: errorDomain}); dErr == nil {
			st = detailed
		}
		return st.Err()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	log.Error().Stack().Err(err).Str("method", method).Msg("request failed")
	return status.Error(codes.Internal, "internal error")
}
