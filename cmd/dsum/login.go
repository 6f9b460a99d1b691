package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/drive-summarizer/internal/oauth"
	"github.com/Zuo-Peng/drive-summarizer/internal/open"
)

const signInTimeout = 5 * time.Minute

func loginCmd() *cobra.Command {
	var code string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google and store a backend session",
		Long: `Sign in with Google. Without --code, a consent page is opened in the
browser and the authorization code is captured on the configured
oauth.listen_addr, then exchanged by the backend for a session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if code == "" {
				code, err = captureCode(cmd.Context(), a, noBrowser)
				if err != nil {
					return err
				}
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			if _, err := a.sessions.Login(ctx, a.backend, code); err != nil {
				return err
			}

			fmt.Printf("Logged in (profile %s).\n", a.sessions.Scope())
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "authorization code obtained elsewhere")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the sign-in address instead of opening it")
	return cmd
}

func captureCode(ctx context.Context, a *app, noBrowser bool) (string, error) {
	oc := a.cfg.OAuth
	if oc.ClientID == "" {
		return "", errors.New("oauth.client_id is not configured, set it in the config file or pass --code")
	}

	flow := oauth.NewFlow(oauth.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		ListenAddr:   oc.ListenAddr,
		Scopes:       oc.Scopes,
	})

	launch := open.URL
	if noBrowser {
		launch = func(string) error { return errors.New("browser disabled") }
	}
	notify := func(u string) {
		fmt.Fprintf(os.Stderr, "Open this address to sign in:\n  %s\n", u)
	}

	ctx, cancel := context.WithTimeout(ctx, signInTimeout)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Waiting for Google sign-in...")
	code, err := flow.Run(ctx, launch, notify)
	if err != nil {
		return "", fmt.Errorf("sign-in: %w", err)
	}
	return code, nil
}
