package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EasterCompany/dex-meetup-service/internal/apiclient"
	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/spf13/cobra"
)

const tokenKey = "session"

var (
	serverURL string
	token     string
	dbPath    string
)

func main() {
	home, _ := os.UserHomeDir()
	if err := newRootCmd(filepath.Join(home, ".meetup", "joy.db")).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "meetupctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(defaultDB string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetupctl",
		Short:         "Terminal client for the meetup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MEETUP_SERVER", apiclient.DefaultURL), "meetup service URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MEETUP_TOKEN"), "session token (defaults to the saved one)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "local database path")

	rootCmd.AddCommand(joyCmd())
	rootCmd.AddCommand(postsCmd())
	rootCmd.AddCommand(chatsCmd())
	rootCmd.AddCommand(placesCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(tuiCmd())
	return rootCmd
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getStore() (*joy.SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return joy.OpenSQLiteStore(dbPath)
}

// getClient returns an API client using --token or the token saved by
// login.
func getClient(ctx context.Context, store *joy.SQLiteStore) (*apiclient.Client, error) {
	tok := token
	if tok == "" && store != nil {
		saved, ok, err := store.Get(ctx, tokenKey)
		if err != nil {
			return nil, fmt.Errorf("read saved session: %w", err)
		}
		if ok {
			tok = string(saved)
		}
	}
	c := apiclient.NewClient(serverURL, tok)
	c.Timezone = os.Getenv("TZ")
	return c, nil
}

// openCache returns the local daily cache backed by the SQLite store.
func openCache(ctx context.Context) (*joy.Cache, *joy.SQLiteStore, error) {
	store, err := getStore()
	if err != nil {
		return nil, nil, err
	}
	client, err := getClient(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return joy.NewCache(store, client), store, nil
}
