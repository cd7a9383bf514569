package gate

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/obs"
)

// RecoveryInterceptor converts uncaught faults into a generic Unknown
// status so a handler bug can never surface as a silent success or tear
// down the connection without a code.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				obs.LogRequest(map[string]any{
					"level":  "error",
					"msg":    "handler panic",
					"method": info.FullMethod,
					"panic":  r,
				})
				err = status.Errorf(codes.Unknown, "internal fault: %v", r)
			}
		}()

		resp, err = handler(ctx, req)
		if err != nil {
			if _, ok := status.FromError(err); !ok {
				err = status.Error(codes.Unknown, err.Error())
			}
		}
		return resp, err
	}
}
