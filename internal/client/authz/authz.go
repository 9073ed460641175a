// Package authz lets a dependent gRPC service delegate authorization to the
// account authority. Each protected method names one permission; the
// interceptor checks it with a single CheckPermission call and puts the
// caller's subject id into the request context.
package authz

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/client/client"
	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Checker is satisfied by *client.AccountClient.
type Checker interface {
	CheckPermission(ctx context.Context, accessToken, permission string) (string, error)
}

type subjectKey struct{}

// SubjectID returns the subject stored by the interceptor.
func SubjectID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey{}).(string)
	return id, ok
}

type Interceptor struct {
	checker     Checker
	permissions map[string]string
	logger      logging.Logger
}

// NewInterceptor guards the methods in permissions (full method name to
// permission name). Methods not listed pass through unchecked.
func NewInterceptor(checker Checker, permissions map[string]string, l logging.Logger) *Interceptor {
	return &Interceptor{checker: checker, permissions: permissions, logger: l.With("module", "authz")}
}

func accessToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		permission, ok := i.permissions[info.FullMethod]
		if !ok {
			return handler(ctx, req)
		}

		token := accessToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing access token")
		}

		subject, err := i.checker.CheckPermission(ctx, token, permission)
		if err != nil {
			return nil, i.statusOf(ctx, info.FullMethod, err)
		}

		return handler(context.WithValue(ctx, subjectKey{}, subject), req)
	}
}

func (i *Interceptor) statusOf(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, client.ErrForbidden), errors.Is(err, client.ErrRevoked):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, client.ErrUnavailable):
		i.logger.Warn(ctx, "account authority unavailable", "method", method, "error", err)
		return status.Error(codes.Unavailable, "authorization unavailable")
	default:
		i.logger.Error(ctx, "permission check failed", "method", method, "error", err)
		return status.Error(codes.Internal, "authorization failed")
	}
}
