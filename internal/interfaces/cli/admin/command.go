package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/bootstrap"
	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/infrastructure/auth"
)

var (
	env        string
	configPath string
	uid        int64
)

type accountLookup interface {
	GetByUID(ctx context.Context, uid int64) (*account.Account, error)
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console access",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	token := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an admin account",
		RunE:  runToken,
	}
	token.Flags().Int64Var(&uid, "uid", 0, "Account uid the token is issued for")
	_ = token.MarkFlagRequired("uid")
	cmd.AddCommand(token)

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.LoadRuntime(env, configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	container, err := bootstrap.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Close(ctx)

	token, err := issueToken(ctx, container.AccountRepository(), container.Tokens, uid)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "valid for %s\n", container.Tokens.TokenTTL().Round(time.Second))
	return nil
}

// issueToken only signs for accounts that currently hold an admin role.
func issueToken(ctx context.Context, accounts accountLookup, tokens *auth.JWTService, uid int64) (string, error) {
	acc, err := accounts.GetByUID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to load account %d: %w", uid, err)
	}
	if acc == nil {
		return "", fmt.Errorf("account %d not found", uid)
	}
	if !acc.IsAdmin() {
		return "", fmt.Errorf("account %d is not an admin (user type %s)", uid, acc.UserType())
	}
	return tokens.Generate(uid)
}
