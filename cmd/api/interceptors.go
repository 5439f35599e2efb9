package main

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/metrics"
)

// context key type for storing auth claims in context
type authContextKey struct{}

// methods that don't require authentication
var publicMethods = map[string]bool{
	v1.ChestService_Register_FullMethodName: true,
	v1.ChestService_Login_FullMethodName:    true,
}

// getClaimsFromContext extracts auth claims from the context, if present.
func getClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return nil, false
	}
	c, ok := v.(*auth.Claims)
	return c, ok
}

// authenticate verifies the bearer token in the incoming metadata and returns
// a context carrying its claims.
func authenticate(ctx context.Context, j *auth.JWTManager) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
	}
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return nil, status.Errorf(codes.Unauthenticated, "missing authorization header")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer"))
	if token == "" {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}

	claims, err := j.VerifyToken(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthenticated: %v", err)
	}
	return context.WithValue(ctx, authContextKey{}, claims), nil
}

// authUnaryInterceptor enforces JWT authentication for every method except
// Register and Login.
func authUnaryInterceptor(j *auth.JWTManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := authenticate(ctx, j)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// authStreamInterceptor is the stream equivalent of authUnaryInterceptor.
func authStreamInterceptor(j *auth.JWTManager) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := authenticate(ss.Context(), j)
		if err != nil {
			return err
		}
		return handler(srv, wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// wrappedServerStream wraps grpc.ServerStream to override Context()
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context (with claims)
func (w wrappedServerStream) Context() context.Context { return w.ctx }

// recoveryUnaryInterceptor turns a handler panic into an Internal error.
func recoveryUnaryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", info.FullMethod).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func recoveryStreamInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", info.FullMethod).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(srv, ss)
	}
}

// loggingUnaryInterceptor logs every call with its outcome and records its latency.
func loggingUnaryInterceptor(log zerolog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observe(log, m, info.FullMethod, start, err)
		return resp, err
	}
}

func loggingStreamInterceptor(log zerolog.Logger, m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		observe(log, m, info.FullMethod, start, err)
		return err
	}
}

func observe(log zerolog.Logger, m *metrics.Metrics, method string, start time.Time, err error) {
	elapsed := time.Since(start)
	code := status.Code(err)
	m.ObserveRPC(method, code.String(), elapsed)

	ev := log.Debug()
	if code == codes.Internal || code == codes.Unknown {
		ev = log.Warn()
	}
	ev.Str("method", method).
		Str("code", code.String()).
		Dur("duration", elapsed).
		Msg("rpc")
}
