package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/vcs"
)

func catCmd(a *app) *cobra.Command {
	var branch, revision, encoding string
	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file as of a branch head or revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				var opts []vcs.ReadOption
				if revision != "" {
					opts = append(opts, vcs.WithRevision(revision))
				}
				text, err := v.FileText(ctx, vcs.Branch(branch), args[0], encoding, opts...)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVar(&revision, "revision", "", "read at this revision instead of the head")
	cmd.Flags().StringVar(&encoding, "encoding", "", "decode the file from this encoding (default utf-8)")
	return cmd
}

func putCmd(a *app) *cobra.Command {
	var branch, message, source string
	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "Write a file from --file or stdin and commit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if source != "" {
				content, err = os.ReadFile(source)
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read content: %w", err)
			}
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				commit, err := v.SetFileContent(ctx, vcs.Branch(branch), args[0], content, message)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), commit.Revision)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&source, "file", "f", "", "local file to read the content from")
	return cmd
}

func rmCmd(a *app) *cobra.Command {
	var branch, message string
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file and commit the removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				commit, err := v.RemoveFile(ctx, vcs.Branch(branch), args[0], message)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), commit.Revision)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}

func existsCmd(a *app) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "exists <path>",
		Short: "Report whether a file exists on a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, v *vcs.VCS) error {
				ok, err := v.FileExists(ctx, vcs.Branch(branch), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch (default branch when empty)")
	return cmd
}
