package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func printTags(w io.Writer, tags []vcs.Tag) {
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Commit.Revision, t.Created.Format(time.RFC3339), t.Message)
	}
}

func tagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Create, delete and list tags",
	}

	var branch, revision, message string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Tag the head of a branch, or --revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				var opts []vcs.ReadOption
				if revision != "" {
					opts = append(opts, vcs.WithRevision(revision))
				}
				tag, err := v.CreateTag(ctx, vcs.Branch(branch), args[0], message, opts...)
				if err != nil {
					return err
				}
				printTags(cmd.OutOrStdout(), []vcs.Tag{tag})
				return nil
			})
		},
	}
	create.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	create.Flags().StringVar(&revision, "revision", "", "tag this revision instead of the head")
	create.Flags().StringVarP(&message, "message", "m", "", "tag message (lightweight tag when empty)")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				return v.RemoveTag(ctx, args[0])
			})
		},
	}

	var onRevision string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tags in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				var (
					tags []vcs.Tag
					err  error
				)
				if onRevision != "" {
					tags, err = v.TagsOnRevision(ctx, onRevision)
				} else {
					tags, err = v.Tags(ctx)
				}
				if err != nil {
					return err
				}
				printTags(cmd.OutOrStdout(), tags)
				return nil
			})
		},
	}
	list.Flags().StringVar(&onRevision, "revision", "", "only tags pointing at this revision")

	last := &cobra.Command{
		Use:   "last",
		Short: "Show the most recently created tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				tag, err := v.LastTag(ctx)
				if err != nil {
					return err
				}
				if tag != nil {
					printTags(cmd.OutOrStdout(), []vcs.Tag{*tag})
				}
				return nil
			})
		},
	}

	cmd.AddCommand(create, del, list, last)
	return cmd
}
