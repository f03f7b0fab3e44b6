// Command dockertag queries container registries for newer tags and updates
// Dockerfile FROM lines accordingly, driven by one of four subcommands:
// input, overview, file, and multi.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagwright/dockertag/internal/cache"
	"github.com/tagwright/dockertag/internal/config"
	"github.com/tagwright/dockertag/internal/logging"
	"github.com/tagwright/dockertag/internal/orchestrate"
	"github.com/tagwright/dockertag/internal/registry"
	"github.com/tagwright/dockertag/internal/upgrade"
	"github.com/tagwright/dockertag/internal/vcscommit"
)

type commonFlags struct {
	arch           string
	tagSearchLimit int
	debug          bool
	quiet          bool
	configPath     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	common := &commonFlags{}

	root := &cobra.Command{
		Use:           "dockertag",
		Short:         "Find and apply upgraded container image tags",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&common.arch, "arch", "a", "", "filter tags to the given architecture")
	root.PersistentFlags().IntVar(&common.tagSearchLimit, "tag-search-limit", 0, "limit the number of tags searched on Docker Hub")
	root.PersistentFlags().BoolVarP(&common.debug, "debug", "d", false, "activate debug logging")
	root.PersistentFlags().BoolVarP(&common.quiet, "quiet", "q", false, "print only the result")
	root.PersistentFlags().StringVar(&common.configPath, "config", config.DefaultPath(), "path to the configuration file")

	root.AddCommand(
		newInputCmd(common),
		newOverviewCmd(common),
		newFileCmd(common),
		newMultiCmd(common),
	)
	return root
}

func loadDeps(common *commonFlags, quietSilent bool) (orchestrate.Deps, *config.Config, error) {
	cfg, err := config.Load(common.configPath)
	if err != nil {
		return orchestrate.Deps{}, nil, err
	}

	if common.arch == "" {
		common.arch = cfg.Defaults.Arch
	}
	if common.tagSearchLimit == 0 {
		common.tagSearchLimit = cfg.Registry.TagSearchLimit
	}

	log := logging.New(common.debug, common.quiet, quietSilent)
	return orchestrate.Deps{
		Registry: registry.New(cfg.Registry.UserAgent, log),
		Cache:    cache.New(cfg.Cache.Directory, log),
		Log:      log,
	}, cfg, nil
}

func newInputCmd(common *commonFlags) *cobra.Command {
	var strat string
	cmd := &cobra.Command{
		Use:     "input <IMAGE>",
		Aliases: []string{"i"},
		Short:   "Read one image reference, print the chosen successor",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, cfg, err := loadDeps(common, true)
			if err != nil {
				return err
			}
			strategy, err := resolveStrategy(strat, cfg)
			if err != nil {
				return err
			}
			return orchestrate.Input(context.Background(), deps, args[0], strategy, common.tagSearchLimit, common.arch, common.quiet)
		},
	}
	cmd.Flags().StringVar(&strat, "strat", "", "which strategy should be used")
	return cmd
}

func newOverviewCmd(common *commonFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overview <IMAGE>",
		Aliases: []string{"o"},
		Short:   "Enumerate the successor for every strategy",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, _, err := loadDeps(common, false)
			if err != nil {
				return err
			}
			return orchestrate.Overview(context.Background(), deps, args[0], common.tagSearchLimit, common.arch, common.quiet)
		},
	}
	return cmd
}

func newFileCmd(common *commonFlags) *cobra.Command {
	var strat string
	var dryRun bool
	var commit bool
	cmd := &cobra.Command{
		Use:     "file <FILE>",
		Aliases: []string{"s"},
		Short:   "Update a single Dockerfile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, cfg, err := loadDeps(common, false)
			if err != nil {
				return err
			}
			strategy, err := resolveStrategy(strat, cfg)
			if err != nil {
				return err
			}
			n, err := orchestrate.File(context.Background(), deps, args[0], strategy, common.tagSearchLimit, common.arch, dryRun)
			if err != nil {
				return err
			}
			return maybeCommit(deps, cfg, commit, dryRun, n, []string{args[0]})
		},
	}
	cmd.Flags().StringVar(&strat, "strat", "", "which strategy should be used")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the new file contents instead of writing them")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the changed file to the enclosing git repository")
	return cmd
}

func newMultiCmd(common *commonFlags) *cobra.Command {
	var strat string
	var dryRun bool
	var commit bool
	var excludeFiles []string
	var ignoreVersions []string
	cmd := &cobra.Command{
		Use:     "multi <FOLDER>",
		Aliases: []string{"m"},
		Short:   "Walk a folder and update every Dockerfile found",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, cfg, err := loadDeps(common, false)
			if err != nil {
				return err
			}
			strategy, err := resolveStrategy(strat, cfg)
			if err != nil {
				return err
			}
			n, err := orchestrate.Multi(context.Background(), deps, args[0], strategy, common.tagSearchLimit, common.arch, dryRun, excludeFiles, ignoreVersions)
			if err != nil {
				return err
			}
			return maybeCommit(deps, cfg, commit, dryRun, n, []string{args[0]})
		},
	}
	cmd.Flags().StringVar(&strat, "strat", "", "which strategy should be used")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the new file contents instead of writing them")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit changed files to the enclosing git repository")
	cmd.Flags().StringSliceVarP(&excludeFiles, "exclude-file", "e", nil, "glob patterns of files to exclude")
	cmd.Flags().StringSliceVarP(&ignoreVersions, "ignore-versions", "i", nil, "image references that should never be updated")
	return cmd
}

func resolveStrategy(flagValue string, cfg *config.Config) (upgrade.Strategy, error) {
	if flagValue == "" {
		flagValue = cfg.Defaults.Strategy
	}
	return upgrade.ParseStrategy(flagValue)
}

func maybeCommit(deps orchestrate.Deps, cfg *config.Config, commitFlag, dryRun bool, n int, paths []string) error {
	if !commitFlag || dryRun || n == 0 {
		return nil
	}
	committer, err := vcscommit.Open(paths[0], cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return err
	}
	if err := committer.Commit(vcscommit.CommitMessage(n), paths); err != nil {
		return err
	}
	deps.Log.Info().Int("updates", n).Msg("committed changes")
	return nil
}
