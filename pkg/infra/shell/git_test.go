package shell_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/infra/shell"
)

type fakeRunner struct {
	outputs map[string]string

	runCmds      []string
	mutationCmds []string
}

func (r *fakeRunner) Run(ctx context.Context, command string) (string, error) {
	r.runCmds = append(r.runCmds, command)
	return r.outputs[command], nil
}

func (r *fakeRunner) RunMutation(ctx context.Context, command, dryRunResult string) (string, error) {
	r.mutationCmds = append(r.mutationCmds, command)
	return r.outputs[command], nil
}

func TestGitCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("reads go through Run", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"git rev-parse --abbrev-ref HEAD": "develop",
		}}
		git := shell.NewGit(runner)

		branch := gt.R1(git.CurrentBranch(ctx)).NoError(t)
		gt.Value(t, branch).Equal("develop")
		gt.Number(t, len(runner.mutationCmds)).Equal(0)
	})

	t.Run("mutations go through RunMutation", func(t *testing.T) {
		runner := &fakeRunner{}
		git := shell.NewGit(runner)

		gt.NoError(t, git.Fetch(ctx, "origin", "main"))
		gt.NoError(t, git.Checkout(ctx, "release-1.2.0", true))
		gt.NoError(t, git.Push(ctx, "release-1.2.0"))
		gt.NoError(t, git.Add(ctx, "."))
		gt.NoError(t, git.Commit(ctx, "chore(release): 1.2.0", "release-bot"))

		gt.Value(t, runner.mutationCmds).Equal([]string{
			"git fetch origin main",
			"git checkout -b release-1.2.0",
			"git push --set-upstream origin release-1.2.0",
			"git add .",
			`git commit -m "chore(release): 1.2.0" --author="release-bot"`,
		})
		gt.Number(t, len(runner.runCmds)).Equal(0)
	})

	t.Run("diff parses one path per line", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"git diff --name-only main...HEAD": "packages/pkg-a/index.ts\n\npackages/pkg-b/index.ts\n",
		}}
		git := shell.NewGit(runner)

		paths := gt.R1(git.DiffNameOnly(ctx, "main")).NoError(t)
		gt.Value(t, paths).Equal([]string{"packages/pkg-a/index.ts", "packages/pkg-b/index.ts"})
	})

	t.Run("log range depends on the last tag", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"git log --pretty=format:%s pkg-a@0.9.0..HEAD -- packages/pkg-a": "fix: a\nfeat: b",
		}}
		git := shell.NewGit(runner)

		lines := gt.R1(git.Log(ctx, "packages/pkg-a", "pkg-a@0.9.0")).NoError(t)
		gt.Value(t, lines).Equal([]string{"fix: a", "feat: b"})

		gt.R1(git.Log(ctx, "packages/pkg-a", "")).NoError(t)
		gt.Value(t, runner.runCmds[1]).Equal("git log --pretty=format:%s HEAD -- packages/pkg-a")
	})

	t.Run("latest tag picks the first line", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			`git tag --list "pkg-a@*" --sort=-v:refname`: "pkg-a@1.1.0\npkg-a@1.0.0",
		}}
		git := shell.NewGit(runner)

		tag := gt.R1(git.LatestTag(ctx, "pkg-a@")).NoError(t)
		gt.Value(t, tag).Equal("pkg-a@1.1.0")
	})

	t.Run("no tags yields empty without error", func(t *testing.T) {
		runner := &fakeRunner{}
		git := shell.NewGit(runner)

		tag := gt.R1(git.LatestTag(ctx, "pkg-a@")).NoError(t)
		gt.Value(t, tag).Equal("")
	})
}
