package grpc

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	pb "github.com/dmitrijs2005/gophaccount/internal/proto"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
)

// errorCode maps a service error to the response code and message sent to
// the caller. Anything unrecognized is reported as an opaque internal error.
func errorCode(err error) (int32, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrExpiredAccessToken),
		errors.Is(err, common.ErrExpiredRefreshToken),
		errors.Is(err, common.ErrInvalidAccessToken),
		errors.Is(err, common.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrRevoked),
		errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func tokensOf(pair *services.TokenPair) *pb.TokenPair {
	return &pb.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *pb.AuthRequest) (*pb.AuthResponse, error) {
	pair, err := s.accounts.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// unknown usernames look exactly like wrong passwords
			err = common.ErrInvalidCredentials
		}
		code, msg := errorCode(err)
		return &pb.AuthResponse{Code: code, Message: msg}, nil
	}

	return &pb.AuthResponse{Code: http.StatusOK, Tokens: tokensOf(pair)}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.RefreshResponse, error) {
	pair, err := s.accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		code, msg := errorCode(err)
		return &pb.RefreshResponse{Code: code, Message: msg}, nil
	}

	return &pb.RefreshResponse{Code: http.StatusOK, Tokens: tokensOf(pair)}, nil
}

func (s *GRPCServer) CheckPermission(ctx context.Context, req *pb.CheckPermissionRequest) (*pb.CheckPermissionResponse, error) {
	subject, err := s.accounts.CheckPermission(ctx, req.AccessToken, req.Permission)
	if err != nil {
		code, msg := errorCode(err)
		return &pb.CheckPermissionResponse{Code: code, Message: msg}, nil
	}

	return &pb.CheckPermissionResponse{Code: http.StatusOK, SubjectID: subject}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if err := s.accounts.Logout(ctx, req.AccessToken); err != nil {
		code, msg := errorCode(err)
		return &pb.LogoutResponse{Code: code, Message: msg}, nil
	}

	return &pb.LogoutResponse{Code: http.StatusOK}, nil
}
