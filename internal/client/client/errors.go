package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRevoked      = errors.New("revoked")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("server error")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// reasons are the server messages that name a precise failure.
var reasons = map[string]error{
	common.ErrInvalidCredentials.Error():  common.ErrInvalidCredentials,
	common.ErrExpiredAccessToken.Error():  common.ErrExpiredAccessToken,
	common.ErrExpiredRefreshToken.Error(): common.ErrExpiredRefreshToken,
	common.ErrInvalidAccessToken.Error():  common.ErrInvalidAccessToken,
	common.ErrInvalidRefreshToken.Error(): common.ErrInvalidRefreshToken,
	common.ErrRevoked.Error():             common.ErrRevoked,
	common.ErrForbidden.Error():           common.ErrForbidden,
}

// codeError converts a non-200 response code into an error.
func codeError(code int32, message string) error {
	var kind error
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = ErrForbidden
		if message == common.ErrRevoked.Error() {
			kind = ErrRevoked
		}
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusInternalServerError:
		return ErrInternal
	default:
		return fmt.Errorf("unexpected response code %d: %s", code, message)
	}

	if reason, ok := reasons[message]; ok {
		return fmt.Errorf("%w: %w", kind, reason)
	}
	return kind
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
