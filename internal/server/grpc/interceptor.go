package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/common"
	pb "github.com/dmitrijs2005/healthlog/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userIDKey      ctxKey = "userID"
	accessTokenKey ctxKey = "accessToken"
)

// publicMethods are served without an access token.
var publicMethods = map[string]struct{}{
	pb.HealthLogSync_Ping_FullMethodName:   {},
	pb.HealthLogSync_SignUp_FullMethodName: {},
	pb.HealthLogSync_SignIn_FullMethodName: {},
}

func userIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func accessTokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(accessTokenKey).(string)
	return v
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	accessToken := tokenFromMetadata(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.users.Authenticate(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		s.logger.Error(ctx, "authenticate", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unavailable, "cannot verify token")
	}

	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, accessTokenKey, accessToken)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}
