package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const RequestIDMetadataKey = "x-request-id"

func LoggingUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	logger.LogGRPCRequest(ctx, info.FullMethod, logger.RequestIDFromContext(ctx), time.Since(start), err)
	return resp, err
}

// RequestIDUnaryInterceptor reuses the caller's x-request-id when present and
// echoes the id back in the response header.
func RequestIDUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 {
			requestID = ids[0]
		}
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = logger.ContextWithRequestID(ctx, requestID)

	if err := grpc.SendHeader(ctx, metadata.Pairs(RequestIDMetadataKey, requestID)); err != nil {
		slog.DebugContext(ctx, "Failed to send request id header", slog.String("error", err.Error()))
	}

	return handler(ctx, req)
}

func PanicRecoveryUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in gRPC handler",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func ChainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			next := chain
			chain = func(ctx context.Context, req any) (any, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return chain(ctx, req)
	}
}
