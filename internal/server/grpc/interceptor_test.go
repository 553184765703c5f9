package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/healthlog/internal/common"
	pb "github.com/dmitrijs2005/healthlog/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}

// echoHandler returns the identity the interceptor stored in ctx.
func echoHandler(ctx context.Context, _ interface{}) (interface{}, error) {
	id, _ := userIDFrom(ctx)
	return [2]string{id, accessTokenFrom(ctx)}, nil
}

func TestAccessTokenInterceptor_PublicMethods(t *testing.T) {
	s, _, _ := newTestServer()

	for _, m := range []string{
		pb.HealthLogSync_Ping_FullMethodName,
		pb.HealthLogSync_SignUp_FullMethodName,
		pb.HealthLogSync_SignIn_FullMethodName,
	} {
		resp, err := s.accessTokenInterceptor(context.Background(), nil, info(m), echoHandler)
		require.NoError(t, err, m)
		assert.Equal(t, [2]string{"", ""}, resp)
	}
}

func TestAccessTokenInterceptor_Protected(t *testing.T) {
	s, us, _ := newTestServer()
	ctx := context.Background()
	_, err := us.SignUp(ctx, "a@b.io", "long enough")
	require.NoError(t, err)
	sess, err := us.SignIn(ctx, "a@b.io", "long enough")
	require.NoError(t, err)

	method := info(pb.HealthLogSync_UploadHealthLog_FullMethodName)

	resp, err := s.accessTokenInterceptor(withToken(sess.AccessToken), nil, method, echoHandler)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"user-a@b.io", sess.AccessToken}, resp)

	_, err = s.accessTokenInterceptor(ctx, nil, method, echoHandler)
	requireCode(t, err, codes.Unauthenticated)

	_, err = s.accessTokenInterceptor(withToken("garbage"), nil, method, echoHandler)
	requireCode(t, err, codes.Unauthenticated)

	require.NoError(t, us.SignOut(ctx, sess.AccessToken))
	_, err = s.accessTokenInterceptor(withToken(sess.AccessToken), nil, info(pb.HealthLogSync_GetUser_FullMethodName), echoHandler)
	requireCode(t, err, codes.Unauthenticated)
}

func TestAccessTokenInterceptor_BackendFailure(t *testing.T) {
	s, us, _ := newTestServer()
	us.authErr = errBoom

	_, err := s.accessTokenInterceptor(withToken("anything"), nil, info(pb.HealthLogSync_SignOut_FullMethodName), echoHandler)
	requireCode(t, err, codes.Unavailable)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s, _, _ := newTestServer()

	resp, err := s.loggingInterceptor(context.Background(), "req", info("/x/Y"),
		func(context.Context, interface{}) (interface{}, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
