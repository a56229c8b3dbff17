package main

import (
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/feed"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/spf13/cobra"
)

func postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd.Context(), nil)
			if err != nil {
				return err
			}
			list, err := client.ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No posts yet.")
				return nil
			}
			for _, p := range list {
				printPost(cmd, p)
			}
			return nil
		},
	}

	var location, when string
	var spots int
	newCmd := &cobra.Command{
		Use:   "new [text]",
		Short: "Post an invitation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := savedClient(cmd)
			if err != nil {
				return err
			}
			req := types.CreatePostRequest{Text: strings.Join(args, " "), Location: location, Time: when}
			if spots > 0 {
				req.Spots = &spots
			}
			p, err := client.CreatePost(cmd.Context(), req)
			if err != nil {
				return err
			}
			printPost(cmd, p)
			return nil
		},
	}
	newCmd.Flags().StringVar(&location, "location", "", "where")
	newCmd.Flags().StringVar(&when, "time", "", "when")
	newCmd.Flags().IntVar(&spots, "spots", 0, "how many people can join")
	cmd.AddCommand(newCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "join [post-id]",
		Short: "Join a post, or leave it if you already joined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := savedClient(cmd)
			if err != nil {
				return err
			}
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			list, err := client.ListPosts(cmd.Context())
			if err != nil {
				return err
			}

			f := feed.New(client, func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) })
			f.SetUser(&me)
			f.Replace(list)
			if err := f.ToggleJoin(cmd.Context(), args[0]); err != nil {
				return err
			}
			if p, ok := f.Post(args[0]); ok {
				printPost(cmd, p)
			}
			return nil
		},
	})

	return cmd
}

func chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List your chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := savedClient(cmd)
			if err != nil {
				return err
			}
			chats, err := client.Chats(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range chats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", c.ID, c.LastMessage)
			}
			return nil
		},
	}
}

func printPost(cmd *cobra.Command, p types.Post) {
	line := fmt.Sprintf("%s  %s: %s", p.ID, p.AuthorName, p.Text)
	if p.Location != "" {
		line += " @ " + p.Location
	}
	if p.Time != "" {
		line += " (" + p.Time + ")"
	}
	if p.Spots != nil {
		line += fmt.Sprintf("  [%d/%d going]", len(p.Participants), *p.Spots)
	} else {
		line += fmt.Sprintf("  [%d going]", len(p.Participants))
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}
