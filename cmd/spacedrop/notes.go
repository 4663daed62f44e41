package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacedrop/spacedrop/client"
)

func newGetNoteCmd() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "get-note",
		Short: "Fetch a shared note by slug",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			n, err := c.GetNote(ctx, slug)
			if err != nil {
				return err
			}

			fmt.Printf("Note:        %s\n", n.Slug)
			fmt.Printf("Public code: %s\n", n.PublicCode)
			fmt.Printf("Title:       %s\n", n.Title)
			fmt.Printf("Updated:     %s\n", n.UpdatedAt.Format(time.RFC3339))
			if n.Content != "" {
				fmt.Printf("\n%s\n", n.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Note slug (required)")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func newUpdateNoteCmd() *cobra.Command {
	var slug, title, content string

	cmd := &cobra.Command{
		Use:   "update-note",
		Short: "Update a shared note's title or content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && content == "" {
				return fmt.Errorf("nothing to update: pass --title or --content")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			var req client.UpdateNoteRequest
			if title != "" {
				req.Title = &title
			}
			if content != "" {
				req.Content = &content
			}

			n, err := c.UpdateNote(ctx, slug, req)
			if err != nil {
				return err
			}

			fmt.Printf("Note updated: %s (%s)\n", n.Slug, n.UpdatedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Note slug (required)")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func newRecentSpacesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List spaces visited from this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			st, err := openState()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if pruned, err := st.PruneExpired(ctx); err == nil && pruned > 0 {
				fmt.Printf("(dropped %d expired)\n", pruned)
			}

			spaces, err := st.RecentSpaces(ctx, limit)
			if err != nil {
				return err
			}
			if len(spaces) == 0 {
				fmt.Println("no recent spaces")
				return nil
			}
			for _, sp := range spaces {
				fmt.Printf("%s  %-10s visited %s\n", sp.SpaceID, sp.Slug, sp.VisitedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum spaces to list")
	return cmd
}

func newForgetSpaceCmd() *cobra.Command {
	var spaceID string

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Remove a space from the local recents list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			st, err := openState()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.ForgetSpace(ctx, spaceID); err != nil {
				return err
			}
			fmt.Println("forgotten")
			return nil
		},
	}

	cmd.Flags().StringVar(&spaceID, "space-id", "", "Space ID (required)")
	_ = cmd.MarkFlagRequired("space-id")
	return cmd
}
