package server

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/pobcards/internal/rpcapi"
)

// NewLoggingInterceptor logs one line per unary call.
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := connect.CodeOf(err)
			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("status", code.String()),
				slog.Duration("duration", time.Since(start)),
			}
			if userID := req.Header().Get(rpcapi.UserHeader); userID != "" {
				attrs = append(attrs, slog.String("user_id", userID))
			}
			if peer := req.Peer().Addr; peer != "" {
				attrs = append(attrs, slog.String("peer_addr", peer))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.LogAttrs(ctx, logLevel(code, err), "request completed", attrs...)
			return resp, err
		}
	}
}

func logLevel(code connect.Code, err error) slog.Level {
	if err == nil {
		return slog.LevelInfo
	}
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeUnauthenticated, connect.CodeCanceled:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
