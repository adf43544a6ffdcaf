// Package main provides the authflow binary: it drives the sign-in and
// password recovery workflows against a live authentication API.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/authflow"
)

const (
	Version = "0.1.0"
	appName = "authflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configURL string
	apiURL    string
	logLevel  string
	timeout   time.Duration
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Authentication workflow client",
		Long:          "authflow runs the sign-in, password recovery and SMS resend workflows against the authentication API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configURL, "config", "c", "", "Config URL (YAML, any afs location)")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Authentication API URL, overrides config")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", time.Minute, "Workflow timeout")

	cmd.AddCommand(recoverCmd(flags), resendSMSCmd(flags), passwordRequiredCmd(flags), signInCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func recoverCmd(flags *globalFlags) *cobra.Command {
	var id, password, code string
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Set a new password using the reactivation id and SMS code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, flags, func(ctx context.Context, srv *authflow.Service) error {
				if err := srv.BuildRecoveryModel(ctx, url.Values{"id": []string{id}}, password); err != nil {
					return err
				}
				if err := srv.RecoverPassword(ctx, code); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "password changed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Reactivation id from the recovery link")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&code, "code", "", "SMS code")
	for _, name := range []string{"id", "password", "code"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func resendSMSCmd(flags *globalFlags) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "resend-sms",
		Short: "Send the recovery SMS again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, flags, func(ctx context.Context, srv *authflow.Service) error {
				if err := srv.BuildRecoveryModel(ctx, url.Values{"id": []string{id}}, ""); err != nil {
					return err
				}
				if err := srv.ResendSMS(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sms sent")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Reactivation id from the recovery link")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func passwordRequiredCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "password-required <email>",
		Short: "Check whether the account needs a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, flags, func(ctx context.Context, srv *authflow.Service) error {
				required, err := srv.PasswordRequired(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password required: %v\n", required)
				return nil
			})
		},
	}
}

func signInCmd(flags *globalFlags) *cobra.Command {
	var user, password, returnURL string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and print the redirect URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, flags, func(ctx context.Context, srv *authflow.Service) error {
				query := url.Values{}
				if returnURL != "" {
					query.Set("ReturnUrl", returnURL)
				}
				redirect, err := srv.SignIn(ctx, query, user, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "signed in, redirect: %s\n", redirect)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Email or user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&returnURL, "return-url", "", "Return URL passed to the API")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// withService loads configuration, starts the service and runs fn bounded by the workflow timeout
func withService(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, srv *authflow.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}
	srv, err := authflow.New(authflow.WithConfig(cfg))
	if err != nil {
		return err
	}
	if err = srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Shutdown()
	ctx, cancel := context.WithTimeout(ctx, flags.timeout)
	defer cancel()
	return fn(ctx, srv)
}

// loadConfig applies command line flags over the loaded configuration
func loadConfig(ctx context.Context, flags *globalFlags) (*authflow.Config, error) {
	cfg, err := authflow.ReadConfig(ctx, flags.configURL)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, cfg.Validate()
}
