// zohoauth is a one-shot helper for bootstrapping the Zoho CRM integration.
// It prints the authorization URL for the self-client consent flow and
// exchanges the resulting grant code for the long-lived refresh token the
// service needs at runtime.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

const crmScope = "ZohoCRM.modules.ALL,ZohoCRM.settings.ALL"

type options struct {
	clientID     string
	clientSecret string
	accountsURL  string
	redirectURI  string
}

func (o *options) oauthConfig() (*oauth2.Config, error) {
	if o.clientID == "" {
		return nil, fmt.Errorf("client ID is required (--client-id or ZOHO_CLIENT_ID)")
	}
	return &oauth2.Config{
		ClientID:     o.clientID,
		ClientSecret: o.clientSecret,
		RedirectURL:  o.redirectURI,
		Scopes:       []string{crmScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  o.accountsURL + "/oauth/v2/auth",
			TokenURL: o.accountsURL + "/oauth/v2/token",
		},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "zohoauth",
		Short:         "Bootstrap Zoho CRM OAuth credentials for the contact service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.clientID, "client-id", envOr("ZOHO_CLIENT_ID", ""), "Zoho API console client ID")
	root.PersistentFlags().StringVar(&opts.clientSecret, "client-secret", envOr("ZOHO_CLIENT_SECRET", ""), "Zoho API console client secret")
	root.PersistentFlags().StringVar(&opts.accountsURL, "accounts-url", envOr("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.in"), "Zoho accounts base URL for your data center")
	root.PersistentFlags().StringVar(&opts.redirectURI, "redirect-uri", "https://www.azaleaservices.co.in/oauth/callback", "redirect URI registered with the Zoho client")
	root.AddCommand(newURLCommand(opts), newExchangeCommand(opts))
	return root
}

func newURLCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the authorization URL to open in a browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.oauthConfig()
			if err != nil {
				return err
			}
			// access_type=offline is what makes Zoho issue a refresh token.
			url := conf.AuthCodeURL("", oauth2.AccessTypeOffline)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, url)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Open the URL, authorize the application, then run:")
			fmt.Fprintln(out, "  zohoauth exchange <code-from-callback>")
			return nil
		},
	}
}

func newExchangeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <grant-code>",
		Short: "Exchange a grant code for the refresh token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.oauthConfig()
			if err != nil {
				return err
			}
			if conf.ClientSecret == "" {
				return fmt.Errorf("client secret is required (--client-secret or ZOHO_CLIENT_SECRET)")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			tok, err := conf.Exchange(ctx, args[0])
			if err != nil {
				return fmt.Errorf("exchange grant code: %w", err)
			}
			if tok.RefreshToken == "" {
				return fmt.Errorf("no refresh token in response; request the code with access_type=offline and use it within its validity window")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Refresh token (set as ZOHO_REFRESH_TOKEN, keep it secret):\n  %s\n\n", tok.RefreshToken)
			fmt.Fprintf(out, "Access token (auto-refreshed at runtime, no need to save):\n  %s\n", tok.AccessToken)
			if !tok.Expiry.IsZero() {
				fmt.Fprintf(out, "Access token expires at %s\n", tok.Expiry.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
