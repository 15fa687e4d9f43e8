package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/buildinfo"
	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init <path>",
		Short: "Create a bare repository with an initial commit on the default branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			return engine.InitRepository(cmd.Context(), args[0], a.cfg.DefaultBranch)
		},
	}
}

func checkoutCmd(a *app) *cobra.Command {
	var branch, revision string
	cmd := &cobra.Command{
		Use:   "checkout <dest>",
		Short: "Materialize a branch or revision into a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				var opts []vcs.ReadOption
				if revision != "" {
					opts = append(opts, vcs.WithRevision(revision))
				}
				return v.Checkout(ctx, vcs.Branch(branch), args[0], opts...)
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVar(&revision, "revision", "", "check out this revision detached")
	return cmd
}

func workspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Inspect and clean the working copy workspace",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List persistent working copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceRoot()
			if err != nil {
				return err
			}
			records, err := ws.WorkingCopies()
			if err != nil {
				return err
			}
			for _, r := range records {
				released := "-"
				if !r.LastReleased.IsZero() {
					released = r.LastReleased.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tacquired=%d\tcorrupted=%d\treleased=%s\n",
					r.Location, r.Folder, r.Acquisitions, r.Corruptions, released)
			}
			return nil
		},
	}
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete working copies nobody is using",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceRoot()
			if err != nil {
				return err
			}
			pruned, err := ws.Prune(cmd.Context())
			for _, folder := range pruned {
				fmt.Fprintln(cmd.OutOrStdout(), folder)
			}
			return err
		},
	}
	cmd.AddCommand(list, prune)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vcs-go %s\n", buildinfo.String())
		},
	}
}
