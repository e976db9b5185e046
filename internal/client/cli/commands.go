package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var marshalOptions = protojson.MarshalOptions{Multiline: true, Indent: "  "}

func printJSON(cmd *cobra.Command, m proto.Message) error {
	b, err := marshalOptions.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func newRegisterCmd(o *rootOptions) *cobra.Command {
	var email, name string
	var roles []string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userEmail, err := promptIfEmpty(cmd, email, "Email")
			if err != nil {
				return err
			}
			userName, err := promptIfEmpty(cmd, name, "Name")
			if err != nil {
				return err
			}
			password, err := GetPassword("Password", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			confirm, err := GetPassword("Repeat password", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				resp, err := c.Register(ctx, userEmail, password, userName, roles)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant (repeatable)")

	return cmd
}

func newLoginCmd(o *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userEmail, err := promptIfEmpty(cmd, email, "Email")
			if err != nil {
				return err
			}
			password, err := GetPassword("Password", cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				resp, err := c.Login(ctx, userEmail, password)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func newRenewCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Exchange the current token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				resp, err := c.RenewToken(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func newUsersCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				resp, err := c.ListUsers(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func newUserCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				resp, err := c.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func newPingCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				if err := c.Ping(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			})
		},
	}
}
