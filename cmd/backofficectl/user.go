package main

import (
	"context"

	identityapp "github.com/agency/backoffice/internal/application/identity"
	"github.com/agency/backoffice/internal/bootstrap"
	"github.com/agency/backoffice/internal/domain/identity"
	"github.com/spf13/cobra"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(newUserCreateCmd(opts))
	return cmd
}

func newUserCreateCmd(opts *rootOptions) *cobra.Command {
	var in identityapp.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account. Used to provision the first admin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := opts.tenantID()
			if err != nil {
				return err
			}
			in.TenantID = tenantID
			return opts.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				user, err := app.Users.CreateUser(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			})
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&in.Role, "role", identity.RoleStaff.String(), "admin, accountant or staff")
	cmd.Flags().StringVar(&in.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
