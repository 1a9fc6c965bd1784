package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/shell"
)

// releaseDisabled reports whether the kill switch forbids this run.
func releaseDisabled(ctx context.Context) bool {
	if os.Getenv(types.EnvRelease) == "false" {
		ctxlog.From(ctx).Warn("release is disabled by FE_RELEASE=false, nothing to do")
		return true
	}
	return false
}

// captureEnv copies the environment variables the pipeline reads into the
// release context.
func captureEnv() map[string]string {
	names := []string{
		types.EnvGitHubToken,
		types.EnvPATToken,
		types.EnvNPMToken,
		types.EnvRelease,
		types.EnvReleaseBranch,
		types.EnvSourceBranch,
		types.EnvReleaseEnvironment,
		types.EnvNodeEnv,
	}

	env := make(map[string]string, len(names))
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			env[name] = v
		}
	}
	return env
}

// pipelineDeps bundles the collaborators both commands assemble.
type pipelineDeps struct {
	rc      *model.ReleaseContext
	runner  *shell.Runner
	git     *shell.Git
	gateway interfaces.ReleaseGateway
}

// buildDeps creates the release context, resolves repository identity from
// git where not configured, and builds the gateway. Credential errors abort
// here, before any mutation.
func buildDeps(ctx context.Context, releaseCfg *config.Release, githubCfg *config.GitHub, dryRun, verbose bool) (*pipelineDeps, error) {
	rc := model.NewReleaseContext()
	rc.DryRun = dryRun
	rc.Verbose = verbose
	rc.Env = captureEnv()
	rc.SetShared(releaseCfg.SharedOptions(os.Getenv))

	if rc.Shared.RootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve working directory", goerr.T(types.TagConfig))
		}
		rc.SetShared(model.SharedOptions{RootPath: wd})
	}

	runner := shell.New(shell.WithDryRun(rc.DryRun), shell.WithDir(rc.Shared.RootPath))
	git := shell.NewGit(runner)

	if rc.Shared.CurrentBranch == "" {
		branch, err := git.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		rc.SetShared(model.SharedOptions{CurrentBranch: branch})
	}

	if rc.Shared.RepoName == "" {
		remoteURL, err := git.RemoteOriginURL(ctx)
		if err != nil {
			return nil, err
		}
		repoName, err := shell.ParseRepoName(remoteURL)
		if err != nil {
			return nil, err
		}
		rc.SetShared(model.SharedOptions{RepoName: repoName})
	}

	gateway, err := githubCfg.Gateway(rc.Shared.RepoName)
	if err != nil {
		return nil, err
	}

	return &pipelineDeps{
		rc:      rc,
		runner:  runner,
		git:     git,
		gateway: gateway,
	}, nil
}
