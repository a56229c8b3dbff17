package main

import (
	"github.com/EasterCompany/dex-meetup-service/internal/tui"
	"github.com/EasterCompany/dex-meetup-service/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive joy list and feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, store, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := getClient(cmd.Context(), store)
			if err != nil {
				return err
			}
			var user *types.User
			if client.Token != "" {
				if me, err := client.Me(cmd.Context()); err == nil {
					user = &me
				}
			}

			program := tea.NewProgram(tui.NewModel(cache, client, client, user), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}
