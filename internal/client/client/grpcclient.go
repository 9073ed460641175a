package client

import (
	"context"

	pb "github.com/dmitrijs2005/gophaccount/internal/proto"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Tokens is an access/refresh pair handed out by the authority.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type AccountClient struct {
	conn   *grpc.ClientConn
	client pb.AccountServiceClient
}

// NewAccountClient connects to the authority at endpointURL. Extra dial
// options are appended after the defaults (plaintext, tracing).
func NewAccountClient(endpointURL string, opts ...grpc.DialOption) (*AccountClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}

	return &AccountClient{conn: conn, client: pb.NewAccountServiceClient(conn)}, nil
}

func (c *AccountClient) Close() error {
	return c.conn.Close()
}

func tokensOf(t *pb.TokenPair) *Tokens {
	if t == nil {
		return nil
	}
	return &Tokens{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

func (c *AccountClient) Authenticate(ctx context.Context, username, password string) (*Tokens, error) {
	resp, err := c.client.Authenticate(ctx, &pb.AuthRequest{Username: username, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	if err := codeError(resp.Code, resp.Message); err != nil {
		return nil, err
	}
	return tokensOf(resp.Tokens), nil
}

func (c *AccountClient) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	resp, err := c.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, mapError(err)
	}
	if err := codeError(resp.Code, resp.Message); err != nil {
		return nil, err
	}
	return tokensOf(resp.Tokens), nil
}

// CheckPermission returns the subject id of accessToken when it carries
// permission.
func (c *AccountClient) CheckPermission(ctx context.Context, accessToken, permission string) (string, error) {
	resp, err := c.client.CheckPermission(ctx, &pb.CheckPermissionRequest{AccessToken: accessToken, Permission: permission})
	if err != nil {
		return "", mapError(err)
	}
	if err := codeError(resp.Code, resp.Message); err != nil {
		return "", err
	}
	return resp.SubjectID, nil
}

func (c *AccountClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.client.Logout(ctx, &pb.LogoutRequest{AccessToken: accessToken})
	if err != nil {
		return mapError(err)
	}
	return codeError(resp.Code, resp.Message)
}
