package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/healthlog/internal/common"
	pb "github.com/dmitrijs2005/healthlog/internal/proto"
	"github.com/dmitrijs2005/healthlog/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors to gRPC statuses. Unclassified errors are
// logged and hidden behind codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, services.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	switch common.KindOf(err) {
	case common.KindValidationFailed, common.KindInvalidInput:
		return status.Error(codes.InvalidArgument, err.Error())
	case common.KindNotAuthenticated:
		return status.Error(codes.Unauthenticated, err.Error())
	case common.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	}

	s.logger.Error(ctx, op, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	n, err := s.logs.Probe(ctx)
	if err != nil {
		s.logger.Warn(ctx, "ping probe failed", "error", err)
		return nil, status.Error(codes.Unavailable, "database unavailable")
	}
	return wrapperspb.Int64(n), nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := pb.RequireFields(req, pb.FieldEmail, pb.FieldPassword)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	user, err := s.users.SignUp(ctx, f[pb.FieldEmail], f[pb.FieldPassword])
	if err != nil {
		return nil, s.toStatus(ctx, "sign up", err)
	}

	return pb.NewStruct(map[string]string{
		pb.FieldID:    user.ID,
		pb.FieldEmail: user.Email,
	}), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := pb.RequireFields(req, pb.FieldEmail, pb.FieldPassword)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sess, err := s.users.SignIn(ctx, f[pb.FieldEmail], f[pb.FieldPassword])
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, s.toStatus(ctx, "sign in", err)
	}

	s.logger.Info(ctx, "signed in", "user_id", sess.User.ID)
	return pb.NewStruct(map[string]string{
		pb.FieldID:          sess.User.ID,
		pb.FieldEmail:       sess.User.Email,
		pb.FieldAccessToken: sess.AccessToken,
	}), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "get user", err)
	}

	return pb.NewStruct(map[string]string{
		pb.FieldID:    user.ID,
		pb.FieldEmail: user.Email,
	}), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	token := accessTokenFrom(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	if err := s.users.SignOut(ctx, token); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}
	return &emptypb.Empty{}, nil
}

// UploadHealthLog stores one ciphertext for the caller. The owner named in
// the request must be the authenticated user.
func (s *GRPCServer) UploadHealthLog(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	f, err := pb.RequireFields(req, pb.FieldOwnerRemoteID, pb.FieldEncryptedPayload, pb.FieldDeviceID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if f[pb.FieldOwnerRemoteID] != userID {
		return nil, status.Error(codes.PermissionDenied, "owner does not match the authenticated user")
	}

	log, err := s.logs.Upload(ctx, userID, f[pb.FieldDeviceID], f[pb.FieldEncryptedPayload])
	if err != nil {
		return nil, s.toStatus(ctx, "upload health log", err)
	}

	return wrapperspb.String(log.ID), nil
}
