package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestInterceptor_AttachesToken(t *testing.T) {
	sess := &fakeSession{token: "A1"}
	icpt := UnaryAuthInterceptor(sess, nil, nil)

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(AuthorizationHeader)
		require.Len(t, toks, 1)
		require.Equal(t, "Bearer A1", toks[0])
		require.Equal(t, []string{"v"}, md.Get("x-other"))
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-other", "v", AuthorizationHeader, "Bearer stale")
	require.NoError(t, icpt(ctx, "/svc/Method", nil, nil, nil, invoker))
	assert.Equal(t, 0, sess.purgeCount())
}

func TestInterceptor_NoTokenNoMetadata(t *testing.T) {
	icpt := UnaryAuthInterceptor(&fakeSession{}, nil, nil)

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(AuthorizationHeader))
		return nil
	}
	require.NoError(t, icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_UnauthenticatedPurgesAndReturnsOriginalError(t *testing.T) {
	sess := &fakeSession{token: "A1"}
	calls := 0
	icpt := UnaryAuthInterceptor(sess, func(context.Context) { calls++ }, nil)

	orig := status.Error(codes.Unauthenticated, "token expired")
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return orig
	}

	err := icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Equal(t, orig, err)
	assert.Equal(t, 1, sess.purgeCount())
	assert.Equal(t, 1, calls)
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "x")},
		{name: "unavailable", err: status.Error(codes.Unavailable, "x")},
		{name: "plain error", err: errors.New("plain")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{token: "A1"}
			icpt := UnaryAuthInterceptor(sess, func(context.Context) { t.Error("hook must not run") }, nil)
			invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
				return tt.err
			}
			require.Equal(t, tt.err, icpt(context.Background(), "/svc/Method", nil, nil, nil, invoker))
			assert.Equal(t, 0, sess.purgeCount())
		})
	}
}

func TestDialGRPC(t *testing.T) {
	conn, err := DialGRPC("passthrough:///localhost:0", &fakeSession{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
