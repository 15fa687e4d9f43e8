package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcs-go/internal/config"
	"github.com/thiagokokada/vcs-go/internal/git"
	"github.com/thiagokokada/vcs-go/internal/vcs"
	"github.com/thiagokokada/vcs-go/internal/workingcopy"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd().ExecuteContext(ctx)
}

// app carries the global flags and what is derived from them.
type app struct {
	envFile   string
	verbose   bool
	repo      string
	workspace string

	cfg    config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "vcs-go",
		Short:         "Branch, tag, merge and diff operations on git repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file to load (default .env)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&a.repo, "repo", "r", "", "repository location: path or file:// URL of a bare repository")
	flags.StringVar(&a.workspace, "workspace", "", "workspace directory holding working copies")

	cmd.AddCommand(
		initCmd(a),
		branchesCmd(a),
		branchCmd(a),
		catCmd(a),
		putCmd(a),
		rmCmd(a),
		existsCmd(a),
		headCmd(a),
		logCmd(a),
		rangeCmd(a),
		walkCmd(a),
		mergeCmd(a),
		diffCmd(a),
		tagCmd(a),
		checkoutCmd(a),
		workspaceCmd(a),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.workspace != "" {
		cfg.WorkspaceDir = a.workspace
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	a.cfg = cfg
	return nil
}

func (a *app) engine() (*git.Engine, error) {
	return git.NewEngine(
		git.WithAuthor(a.cfg.AuthorName, a.cfg.AuthorEmail),
		git.WithLogger(a.logger),
	)
}

func (a *app) workspaceRoot() (*workingcopy.Workspace, error) {
	return workingcopy.NewWorkspace(a.cfg.WorkspaceDir,
		workingcopy.WithLogger(a.logger),
		workingcopy.WithPollInterval(a.cfg.LockPollInterval),
		workingcopy.WithAcquireTimeout(a.cfg.AcquireTimeout),
	)
}

func (a *app) vcs() (*vcs.VCS, error) {
	if a.repo == "" {
		return nil, errors.New("--repo is required")
	}
	engine, err := a.engine()
	if err != nil {
		return nil, err
	}
	ws, err := a.workspaceRoot()
	if err != nil {
		return nil, err
	}
	return vcs.New(ws.Repository(a.repo), engine,
		vcs.WithDefaultBranch(a.cfg.DefaultBranch),
		vcs.WithLogger(a.logger),
	), nil
}

// run builds the facade and hands it to fn.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, v *vcs.VCS) error) error {
	v, err := a.vcs()
	if err != nil {
		return err
	}
	return fn(cmd.Context(), v)
}
