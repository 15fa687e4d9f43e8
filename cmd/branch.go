package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func branchesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "branches [prefix]",
		Short: "List branches, optionally only those starting with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				branches, err := v.Branches(ctx, prefix)
				if err != nil {
					return err
				}
				for _, b := range branches {
					fmt.Fprintln(cmd.OutOrStdout(), b)
				}
				return nil
			})
		},
	}
}

func branchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Create or delete branches",
	}

	var from, createMsg string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch from the head of another one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				return v.CreateBranch(ctx, vcs.Branch(from), args[0], createMsg)
			})
		},
	}
	create.Flags().StringVar(&from, "from", "", "source branch (default branch when empty)")
	create.Flags().StringVarP(&createMsg, "message", "m", "", "reason recorded in the log")

	var deleteMsg string
	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				return v.DeleteBranch(ctx, args[0], deleteMsg)
			})
		},
	}
	del.Flags().StringVarP(&deleteMsg, "message", "m", "", "reason recorded in the log")

	cmd.AddCommand(create, del)
	return cmd
}
