package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
)

func changelogWorkspaces(t *testing.T) (*model.ReleaseContext, string) {
	t.Helper()
	root := t.TempDir()
	dirA := filepath.Join(root, "packages", "pkg-a")
	dirB := filepath.Join(root, "packages", "pkg-b")
	gt.NoError(t, os.MkdirAll(dirA, 0755))
	gt.NoError(t, os.MkdirAll(dirB, 0755))

	rc := model.NewReleaseContext()
	rc.SetWorkspaces([]*model.Workspace{
		{Name: "pkg-a", Version: "1.0.0", Path: "packages/pkg-a", Root: dirA, LastTag: "pkg-a@0.9.0"},
		{Name: "pkg-b", Version: "2.1.0", Path: "packages/pkg-b", Root: dirB, LastTag: ""},
	})
	return rc, root
}

func TestChangelogPlugin_OnExec(t *testing.T) {
	ctx := context.Background()

	logs := map[string][]string{
		"packages/pkg-a": {"fix: handle empty diff", "feat: batch mode"},
		"packages/pkg-b": {},
	}
	git := &mockGit{
		logFunc: func(ctx context.Context, path, sinceTag string) ([]string, error) {
			return logs[path], nil
		},
	}

	rc, _ := changelogWorkspaces(t)
	plugin := usecase.NewChangelogPlugin(git)
	gt.NoError(t, plugin.OnExec(ctx, rc))

	// Sections land on the workspace they were built from, regardless of
	// which goroutine finished first.
	gt.Value(t, rc.Workspaces[0].Changelog).Equal(
		"## pkg-a@1.0.0\n\n- fix: handle empty diff\n- feat: batch mode\n")
	gt.Value(t, rc.Workspaces[1].Changelog).Equal(
		"## pkg-b@2.1.0\n\n- no notable changes\n")

	body := gt.R1(os.ReadFile(filepath.Join(rc.Workspaces[0].Root, "CHANGELOG.md"))).NoError(t)
	gt.String(t, string(body)).Contains("## pkg-a@1.0.0")
}

func TestChangelogPlugin_Deterministic(t *testing.T) {
	ctx := context.Background()
	git := &mockGit{
		logFunc: func(ctx context.Context, path, sinceTag string) ([]string, error) {
			return []string{"chore: bump deps"}, nil
		},
	}
	plugin := usecase.NewChangelogPlugin(git)

	var first []string
	for i := 0; i < 5; i++ {
		rc, _ := changelogWorkspaces(t)
		gt.NoError(t, plugin.OnExec(ctx, rc))

		got := []string{rc.Workspaces[0].Changelog, rc.Workspaces[1].Changelog}
		if i == 0 {
			first = got
			continue
		}
		gt.Value(t, got).Equal(first)
	}
}

func TestChangelogPlugin_PrependsExisting(t *testing.T) {
	ctx := context.Background()
	git := &mockGit{
		logFunc: func(ctx context.Context, path, sinceTag string) ([]string, error) {
			return []string{"feat: second release"}, nil
		},
	}

	rc, _ := changelogWorkspaces(t)
	path := filepath.Join(rc.Workspaces[0].Root, "CHANGELOG.md")
	gt.NoError(t, os.WriteFile(path, []byte("## pkg-a@0.9.0\n\n- initial\n"), 0644))

	plugin := usecase.NewChangelogPlugin(git)
	gt.NoError(t, plugin.OnExec(ctx, rc))

	body := string(gt.R1(os.ReadFile(path)).NoError(t))
	gt.Number(t, len(body)).Greater(0)
	gt.True(t, body[:len("## pkg-a@1.0.0")] == "## pkg-a@1.0.0")
	gt.String(t, body).Contains("## pkg-a@0.9.0")
}

func TestChangelogPlugin_DryRunSkipsFiles(t *testing.T) {
	ctx := context.Background()
	git := &mockGit{
		logFunc: func(ctx context.Context, path, sinceTag string) ([]string, error) {
			return []string{"fix: flaky test"}, nil
		},
	}

	rc, _ := changelogWorkspaces(t)
	rc.DryRun = true

	plugin := usecase.NewChangelogPlugin(git)
	gt.NoError(t, plugin.OnExec(ctx, rc))

	// Changelog is still computed for downstream PR bodies
	gt.String(t, rc.Workspaces[0].Changelog).Contains("fix: flaky test")

	_, err := os.Stat(filepath.Join(rc.Workspaces[0].Root, "CHANGELOG.md"))
	gt.True(t, os.IsNotExist(err))
}
