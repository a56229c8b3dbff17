package main

import (
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/apiclient"
	"github.com/spf13/cobra"
)

// savedClient opens the local store only to read the saved session.
func savedClient(cmd *cobra.Command) (*apiclient.Client, error) {
	store, err := getStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return getClient(cmd.Context(), store)
}

func loginCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google",
		Long: "Without --session, prints the sign-in URL. Open it in a browser; the\n" +
			"page it lands on shows a session id. Run login again with --session <id>.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Open %s/auth/login in your browser, then run:\n", strings.TrimRight(serverURL, "/"))
				fmt.Fprintln(cmd.OutOrStdout(), "  meetupctl login --session <id>")
				return nil
			}

			store, err := getStore()
			if err != nil {
				return err
			}
			defer store.Close()

			me, err := apiclient.NewClient(serverURL, sessionID).Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("session rejected: %w", err)
			}
			if err := store.Set(cmd.Context(), tokenKey, []byte(sessionID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", me.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id from the sign-in page")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := getStore()
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := getClient(cmd.Context(), store)
			if err != nil {
				return err
			}
			if client.Token != "" {
				if err := client.SignOut(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "server sign-out failed: %v\n", err)
				}
			}
			if err := store.Delete(cmd.Context(), tokenKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := savedClient(cmd)
			if err != nil {
				return err
			}
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", me.Name(), me.Email, me.UID)
			return nil
		},
	}
}
