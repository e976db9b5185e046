// Package cli implements gophauth-cli, a command-line client for the
// gophauth AuthService.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

// TokenEnv names the environment variable the token is read from when
// --token is not given.
const TokenEnv = "GOPHAUTH_TOKEN"

// AuthClient is the client API the commands use. *client.GRPCClient
// implements it.
type AuthClient interface {
	Register(ctx context.Context, email, password, name string, roles []string) (*structpb.Struct, error)
	Login(ctx context.Context, email, password string) (*structpb.Struct, error)
	RenewToken(ctx context.Context) (*structpb.Struct, error)
	ListUsers(ctx context.Context) (*structpb.Struct, error)
	GetUser(ctx context.Context, id string) (*structpb.Struct, error)
	Ping(ctx context.Context) error
	SetToken(token string)
	Close() error
}

// Dialer connects to the server at addr.
type Dialer func(addr string) (AuthClient, error)

func DefaultDialer(addr string) (AuthClient, error) {
	return client.NewGRPCClient(addr)
}

type rootOptions struct {
	addr  string
	token string
	dial  Dialer
}

// connect dials the server and applies the token from --token or the
// environment.
func (o *rootOptions) connect() (AuthClient, error) {
	c, err := o.dial(o.addr)
	if err != nil {
		return nil, err
	}
	token := o.token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	if token != "" {
		c.SetToken(token)
	}
	return c, nil
}

// withClient runs fn against a connected client and closes it afterwards.
func (o *rootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, c AuthClient) error) error {
	c, err := o.connect()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, c)
}

// NewRootCmd creates the root command for gophauth-cli.
func NewRootCmd(dial Dialer) *cobra.Command {
	if dial == nil {
		dial = DefaultDialer
	}
	opts := &rootOptions{dial: dial}

	cmd := &cobra.Command{
		Use:           "gophauth-cli",
		Short:         "Command-line client for the gophauth credential service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.addr, "addr", "localhost:50051", "server gRPC address")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "session token (default $"+TokenEnv+")")

	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newRenewCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	cmd.AddCommand(newUserCmd(opts))
	cmd.AddCommand(newPingCmd(opts))

	return cmd
}

// promptIfEmpty asks for a value on the command's input when the flag was
// left empty.
func promptIfEmpty(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return GetSimpleText(bufio.NewReader(cmd.InOrStdin()), prompt, cmd.ErrOrStderr())
}
