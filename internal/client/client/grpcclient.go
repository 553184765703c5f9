package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/common"
	pb "github.com/dmitrijs2005/healthlog/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.HealthLogSyncClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, s.AccessToken())
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; no network traffic happens until
// the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}
	c.conn = conn
	c.client = pb.NewHealthLogSyncClient(conn)
	return c, nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (*models.RemoteUser, error) {
	resp, err := s.client.SignUp(ctx, pb.NewStruct(map[string]string{
		pb.FieldEmail:    email,
		pb.FieldPassword: password,
	}))
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.acceptUser(resp.AsMap()), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.RemoteUser, error) {
	resp, err := s.client.SignIn(ctx, pb.NewStruct(map[string]string{
		pb.FieldEmail:    email,
		pb.FieldPassword: password,
	}))
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.acceptUser(resp.AsMap()), nil
}

// acceptUser converts a user struct and remembers its token, if any.
func (s *GRPCClient) acceptUser(m map[string]any) *models.RemoteUser {
	u := &models.RemoteUser{}
	u.ID, _ = m[pb.FieldID].(string)
	u.Email, _ = m[pb.FieldEmail].(string)
	u.AccessToken, _ = m[pb.FieldAccessToken].(string)
	if u.AccessToken != "" {
		s.SetAccessToken(u.AccessToken)
	}
	return u
}

// SignOut revokes the current token on the server. The local token is
// dropped even when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, err := s.client.SignOut(ctx, &emptypb.Empty{})
	s.SetAccessToken("")
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) CurrentUser(ctx context.Context) (*models.RemoteUser, error) {
	if s.AccessToken() == "" {
		return nil, ErrUnauthorized
	}
	resp, err := s.client.GetUser(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.RemoteUser{
		ID:          pb.StringField(resp, pb.FieldID),
		Email:       pb.StringField(resp, pb.FieldEmail),
		AccessToken: s.AccessToken(),
	}, nil
}

func (s *GRPCClient) UploadHealthLog(ctx context.Context, req models.UploadRequest) (string, error) {
	resp, err := s.client.UploadHealthLog(ctx, pb.NewStruct(map[string]string{
		pb.FieldOwnerRemoteID:    req.OwnerRemoteID,
		pb.FieldEncryptedPayload: req.EncryptedPayload,
		pb.FieldDeviceID:         req.DeviceID,
	}))
	if err != nil {
		return "", s.mapError(err)
	}
	if resp.GetValue() == "" {
		return "", fmt.Errorf("%w: empty remote id", ErrServer)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = ErrUnavailable
	case codes.ResourceExhausted:
		sentinel = ErrRateLimited
	case codes.Internal, codes.Unknown, codes.Aborted, codes.DataLoss:
		sentinel = ErrServer
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.InvalidArgument:
		return common.E(common.KindInvalidInput, "remote call", errors.New(st.Message()))
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	if st.Message() == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
