package main

import (
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/EasterCompany/dex-meetup-service/internal/tui"
	"github.com/spf13/cobra"
)

func joyCmd() *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(c *joy.Cache) (joy.View, error) {
			return c.Load(cmd.Context())
		})
	}
	cmd := &cobra.Command{
		Use:   "joy",
		Short: "Today's joy challenges",
		RunE:  show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show today's list, seeding it on the first run of the day",
		RunE:  show,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [title]",
		Short: "Add your own challenge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *joy.Cache) (joy.View, error) {
				if _, err := c.Load(cmd.Context()); err != nil {
					return c.View(), err
				}
				_, err := c.Add(cmd.Context(), strings.Join(args, " "))
				return c.View(), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle [number]",
		Short: "Mark a challenge done or not done (1 is the top one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if _, err := fmt.Sscan(args[0], &n); err != nil {
				return fmt.Errorf("not a number: %s", args[0])
			}
			return withCache(cmd, func(c *joy.Cache) (joy.View, error) {
				v, err := c.Load(cmd.Context())
				if err != nil {
					return v, err
				}
				if n < 1 || n > len(v.Items) {
					return v, fmt.Errorf("no challenge #%d", n)
				}
				_, err = c.Toggle(cmd.Context(), v.Items[n-1].ID)
				return c.View(), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "suggest",
		Short: "Ask for one more idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *joy.Cache) (joy.View, error) {
				if _, err := c.Load(cmd.Context()); err != nil {
					return c.View(), err
				}
				_, err := c.SuggestOne(cmd.Context())
				return c.View(), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Throw away today's list and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *joy.Cache) (joy.View, error) {
				return c.Reset(cmd.Context())
			})
		},
	})

	return cmd
}

func withCache(cmd *cobra.Command, fn func(*joy.Cache) (joy.View, error)) error {
	cache, store, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := fn(cache)
	if len(v.Items) > 0 || v.DateKey != "" {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderMarkdown(tui.JoyMarkdown(v)))
	}
	return err
}
