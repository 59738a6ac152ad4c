package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/content"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/crm"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/gateway"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/oauth"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
)

func init() {
	rootCmd.AddCommand(signinCmd, signoutCmd, statusCmd)
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in to the CRM through the running agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer logger.Sync()
		ctx := cmd.Context()

		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		creds := storage.NewCredentials(store)
		installationID, err := creds.InstallationID(ctx)
		if err != nil {
			return err
		}

		client, err := runtime.Dial(ctx, agentURL(cfg.Addr()), nil, logger.For("runtime"))
		if err != nil {
			return err
		}
		defer client.Close()

		gw := gateway.New(gateway.Config{
			BaseURL:   cfg.Backend.BaseURL,
			Timeout:   cfg.Backend.Timeout,
			UserAgent: cfg.Backend.UserAgent,
		}, creds, logger.For(logging.ContextGateway), nil)
		relay := content.NewRelay(client, logger.For(logging.ContextContent))

		err = oauth.NewInitiator(installationID, crm.New(gw), relay, logger.For(logging.ContextOAuth)).SignIn(ctx)
		switch {
		case err == nil:
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		case errors.Is(err, oauth.ErrUserCancelled):
			return fmt.Errorf("sign-in cancelled")
		case errors.Is(err, oauth.ErrBetaAccessRequired):
			return fmt.Errorf("this account does not have beta access yet")
		case errors.Is(err, oauth.ErrSignInInProgress):
			return fmt.Errorf("another sign-in window is already open")
		default:
			return err
		}
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Delete the credential held by the running agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		relay, closeFn, err := dialRelay(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := relay.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the running agent holds a credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		relay, closeFn, err := dialRelay(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		ok, err := relay.Authenticated(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		}
		return nil
	},
}

func dialRelay(cmd *cobra.Command) (*content.Relay, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	client, err := runtime.Dial(cmd.Context(), agentURL(cfg.Addr()), nil, logger.For("runtime"))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = client.Close()
		_ = logger.Sync()
	}
	return content.NewRelay(client, logger.For(logging.ContextContent)), closeFn, nil
}
