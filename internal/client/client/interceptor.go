package client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/littlex/internal/logging"
)

// AuthorizationHeader is the gRPC metadata key carrying the bearer token.
const AuthorizationHeader = "authorization"

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(AuthorizationHeader, "Bearer "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryAuthInterceptor is the gRPC counterpart of AuthTransport: it attaches
// the stored token and ends the session on codes.Unauthenticated. The
// original error is always returned to the caller.
func UnaryAuthInterceptor(session TokenSource, onUnauthorized UnauthorizedFunc, log logging.Logger) grpc.UnaryClientInterceptor {
	if log == nil {
		log = logging.Nop()
	}
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token, err := session.Token(ctx)
		if err != nil {
			log.Warn(ctx, "session token unavailable, calling unauthenticated", "method", method, "error", err)
		}
		if token != "" {
			ctx = withBearer(ctx, token)
		}

		err = invoker(ctx, method, req, reply, cc, opts...)
		if err == nil {
			return nil
		}

		st, ok := status.FromError(err)
		if ok && st.Code() == codes.Unauthenticated {
			log.Info(ctx, "call unauthenticated, ending session", "method", method)
			revoke(ctx, session, onUnauthorized, log)
		}
		return err
	}
}

// DialGRPC creates a client connection to addr with UnaryAuthInterceptor
// installed. Transport credentials default to insecure; pass
// grpc.WithTransportCredentials in opts to override.
func DialGRPC(addr string, session TokenSource, onUnauthorized UnauthorizedFunc, log logging.Logger, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryAuthInterceptor(session, onUnauthorized, log)),
	}
	return grpc.NewClient(addr, append(base, opts...)...)
}
