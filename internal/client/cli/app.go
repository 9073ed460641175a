package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gophaccount/internal/client/client"
	"github.com/dmitrijs2005/gophaccount/internal/client/config"
)

// sessionAPI is the part of client.Session the commands use.
type sessionAPI interface {
	Login(ctx context.Context, username, password string) error
	Refresh(ctx context.Context) error
	Check(ctx context.Context, permission string) (string, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
	Username() string
}

type App struct {
	config  *config.Config
	api     *client.AccountClient
	session sessionAPI
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewAccountClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		api:     api,
		session: client.NewSession(api),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	printlnFn("Account CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) getStatus() string {
	if name := a.session.Username(); name != "" {
		return "(" + name + ")"
	}
	return ""
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
