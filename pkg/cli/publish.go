package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/usecase"
)

func cmdPublish() *cli.Command {
	var (
		releaseCfg config.Release
		githubCfg  config.GitHub
		slackCfg   config.Slack
		dryRun     bool
		verbose    bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Log intended mutations without performing them",
			Destination: &dryRun,
			Sources:     cli.EnvVars("DROVER_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Verbose progress output",
			Destination: &verbose,
			Sources:     cli.EnvVars("DROVER_VERBOSE"),
		},
	}
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "publish",
		Aliases: []string{"p"},
		Usage:   "Publish changed workspaces and create their GitHub releases",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if releaseDisabled(ctx) {
				return nil
			}

			deps, err := buildDeps(ctx, &releaseCfg, &githubCfg, dryRun, verbose)
			if err != nil {
				return err
			}

			// Publishing consumes an already-released working set: the
			// workspaces stage only resolves and derives identifiers here,
			// its branch/PR sequence belongs to the release command.
			deps.rc.SetPluginConfig(usecase.PluginNameWorkspaces, model.PluginConfig{
				SkipPhases: []types.Phase{types.PhaseOnSuccess},
			})

			logger.Info("starting publish run",
				slog.String("repo", deps.rc.Shared.RepoName),
				slog.Bool("dryRun", deps.rc.DryRun),
			)

			resolver := usecase.NewWorkspaceResolver(deps.git)
			manager := usecase.NewBranchManager(deps.git, deps.gateway,
				usecase.WithDryRunCreatePR(releaseCfg.DryRunCreatePR),
				usecase.WithPlaceholderPRNumber(releaseCfg.PlaceholderPRNumber),
			)

			pipeline := usecase.NewPipeline(deps.rc)
			if err := pipeline.Register(usecase.NewWorkspacesPlugin(resolver, manager, deps.git)); err != nil {
				return err
			}
			if err := pipeline.Register(usecase.NewChangelogPlugin(deps.git)); err != nil {
				return err
			}
			if err := pipeline.Register(usecase.NewPublishPlugin(deps.runner,
				usecase.WithPublishCommand(releaseCfg.PublishCommand))); err != nil {
				return err
			}
			if err := pipeline.Register(usecase.NewGitHubReleasePlugin(deps.gateway)); err != nil {
				return err
			}
			if err := pipeline.Register(usecase.NewNotifyPlugin(slackCfg.Notifier())); err != nil {
				return err
			}

			return pipeline.Run(ctx)
		},
	}
}
