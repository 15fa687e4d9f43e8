package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func mergeCmd(a *app) *cobra.Command {
	var (
		message string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "merge <src> [dst]",
		Short: "Merge src into dst (default branch when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := vcs.DefaultBranch
			if len(args) == 2 {
				dst = vcs.Branch(args[1])
			}
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				var (
					res vcs.MergeResult
					err error
				)
				if preview {
					res, err = v.PreviewMerge(ctx, vcs.Branch(args[0]), dst)
				} else {
					res, err = v.Merge(ctx, vcs.Branch(args[0]), dst, message)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if res.Success {
					fmt.Fprintln(out, "merged cleanly")
					return nil
				}
				fmt.Fprintln(out, "conflicts:")
				for _, f := range res.ConflictingFiles {
					fmt.Fprintf(out, "\t%s\n", f)
				}
				return fmt.Errorf("merge of %s produced %d conflicting file(s)", args[0], len(res.ConflictingFiles))
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message")
	cmd.Flags().BoolVar(&preview, "preview", false, "only check for conflicts, never commit")
	return cmd
}

func diffCmd(a *app) *cobra.Command {
	var (
		color string
		stat  bool
	)
	cmd := &cobra.Command{
		Use:   "diff <a> [b]",
		Short: "Show what differs in a compared with b (default branch when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			useColor, err := colorEnabled(color, os.Stdout)
			if err != nil {
				return err
			}
			b := vcs.DefaultBranch
			if len(args) == 2 {
				b = vcs.Branch(args[1])
			}
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				entries, err := v.BranchesDiff(ctx, vcs.Branch(args[0]), b)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					if stat {
						fmt.Fprintf(out, "%-6s %s +%d -%d\n", e.ChangeType, e.Path, e.Added, e.Deleted)
						continue
					}
					fmt.Fprintf(out, "%s %s\n", e.ChangeType, e.Path)
					if err := writeDiff(out, e.UnifiedDiff, useColor); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "auto", "colorize output: auto, always or never")
	cmd.Flags().BoolVar(&stat, "stat", false, "print change type and line counts only")
	return cmd
}
