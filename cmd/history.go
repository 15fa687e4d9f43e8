package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func printCommits(w io.Writer, commits []vcs.Commit) {
	for _, c := range commits {
		fmt.Fprintf(w, "%s %s <%s> %s\n", c.Revision, c.Author, c.Email, firstLine(c.Message))
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func headCmd(a *app) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "head",
		Short: "Show the head commit of a branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				head, err := v.HeadCommit(ctx, vcs.Branch(branch))
				if err != nil {
					return err
				}
				if head == nil {
					return fmt.Errorf("%s: %w", vcs.Branch(branch), vcs.ErrBranchNotFound)
				}
				printCommits(cmd.OutOrStdout(), []vcs.Commit{*head})
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	return cmd
}

func logCmd(a *app) *cobra.Command {
	var (
		branch   string
		limit    int
		messages bool
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the first-parent history of a branch, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				if messages {
					msgs, err := v.CommitMessages(ctx, vcs.Branch(branch), limit)
					if err != nil {
						return err
					}
					for _, m := range msgs {
						fmt.Fprintln(cmd.OutOrStdout(), m)
					}
					return nil
				}
				commits, err := v.Log(ctx, vcs.Branch(branch), limit)
				if err != nil {
					return err
				}
				printCommits(cmd.OutOrStdout(), commits)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits (0 for all)")
	cmd.Flags().BoolVar(&messages, "messages", false, "print full commit messages only")
	return cmd
}

func rangeCmd(a *app) *cobra.Command {
	var branch, start, end string
	cmd := &cobra.Command{
		Use:   "range",
		Short: "List commits after --start up to and including --end, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				commits, err := v.CommitsRange(ctx, vcs.Branch(branch), start, end)
				if err != nil {
					return err
				}
				printCommits(cmd.OutOrStdout(), commits)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVar(&start, "start", "", "exclusive start revision (branch root when empty)")
	cmd.Flags().StringVar(&end, "end", "", "inclusive end revision (branch head when empty)")
	return cmd
}

func walkCmd(a *app) *cobra.Command {
	var (
		branch, start, direction string
		limit                    int
	)
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk a branch from --start toward the head (asc) or the root (desc)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := vcs.ParseWalkDirection(direction)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				commits, err := v.CommitsWalk(ctx, vcs.Branch(branch), start, dir, limit)
				if err != nil {
					return err
				}
				printCommits(cmd.OutOrStdout(), commits)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVar(&start, "start", "", "first revision of the walk")
	cmd.Flags().StringVarP(&direction, "direction", "d", "asc", "asc or desc")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits (0 for all)")
	return cmd
}
