package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/utils/async"
)

// PluginNameChangelog identifies the changelog stage
const PluginNameChangelog = "changelog"

// ChangelogPlugin builds a changelog section per workspace from the git
// history since the workspace's last release tag. Sections are built
// concurrently across workspaces; results are assigned positionally.
type ChangelogPlugin struct {
	BasePlugin
	git interfaces.GitClient
}

// NewChangelogPlugin creates the changelog stage
func NewChangelogPlugin(git interfaces.GitClient) *ChangelogPlugin {
	return &ChangelogPlugin{
		BasePlugin: NewBasePlugin(PluginNameChangelog),
		git:        git,
	}
}

// OnExec renders every workspace's changelog and updates its CHANGELOG.md.
func (p *ChangelogPlugin) OnExec(ctx context.Context, rc *model.ReleaseContext) error {
	sections, err := async.Map(ctx, rc.Workspaces, func(ctx context.Context, ws *model.Workspace) (string, error) {
		lines, err := p.git.Log(ctx, ws.Path, ws.LastTag)
		if err != nil {
			return "", err
		}
		return renderChangelogSection(ws, lines), nil
	})
	if err != nil {
		return err
	}

	for i, ws := range rc.Workspaces {
		ws.Changelog = sections[i]

		if rc.DryRun {
			ctxlog.From(ctx).Info("[dry-run] would update changelog file",
				"workspace", ws.Name, "path", filepath.Join(ws.Root, "CHANGELOG.md"))
			continue
		}
		if err := prependChangelog(filepath.Join(ws.Root, "CHANGELOG.md"), sections[i]); err != nil {
			return err
		}
	}
	return nil
}

// renderChangelogSection formats one workspace's section. The output depends
// only on the workspace identity and the given subject lines.
func renderChangelogSection(ws *model.Workspace, lines []string) string {
	var sb strings.Builder
	sb.WriteString("## " + ws.Name + "@" + ws.Version + "\n\n")

	if len(lines) == 0 {
		sb.WriteString("- no notable changes\n")
		return sb.String()
	}
	for _, line := range lines {
		sb.WriteString("- " + line + "\n")
	}
	return sb.String()
}

// prependChangelog puts the new section on top of an existing CHANGELOG.md,
// creating the file when missing.
func prependChangelog(path, section string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to read changelog file", goerr.V("path", path))
	}

	content := section
	if len(existing) > 0 {
		content = section + "\n" + string(existing)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return goerr.Wrap(err, "failed to write changelog file", goerr.V("path", path))
	}
	return nil
}
