package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/utils/tmpl"
)

// GetReleaseBranchParams derives the {tagName, releaseBranch} pair for the
// run. A single workspace is tagged with its version; a batch is tagged
// "batch-<count>-<date>". Derivation is deterministic for a fixed workspace
// list within the same calendar day.
func GetReleaseBranchParams(workspaces []*model.Workspace, shared model.SharedOptions) (*model.ReleaseBranchParams, error) {
	switch len(workspaces) {
	case 0:
		return nil, goerr.New("cannot derive release identifiers without workspaces",
			goerr.T(types.TagConfig))
	case 1:
		ws := workspaces[0]
		tagName := ws.Version
		templateCtx := shared.TemplateContext()
		templateCtx["pkgName"] = ws.Name
		templateCtx["tagName"] = tagName
		return &model.ReleaseBranchParams{
			TagName:       tagName,
			ReleaseBranch: tmpl.Render(shared.BranchName, templateCtx),
		}, nil
	default:
		count := len(workspaces)
		tagName := fmt.Sprintf("batch-%d-%s", count, time.Now().UTC().Format("2006-01-02"))
		releaseName := batchReleaseName(workspaces, shared)

		templateCtx := shared.TemplateContext()
		templateCtx["pkgName"] = releaseName
		templateCtx["releaseName"] = releaseName
		templateCtx["tagName"] = tagName
		templateCtx["length"] = count
		return &model.ReleaseBranchParams{
			TagName:       tagName,
			ReleaseBranch: tmpl.Render(shared.BatchBranchName, templateCtx),
		}, nil
	}
}

// batchReleaseName joins "name<sep>version" for the first
// MaxInlineWorkspaces entries so batch branch names stay bounded; the rest
// are represented by the {{length}} token of the branch template.
func batchReleaseName(workspaces []*model.Workspace, shared model.SharedOptions) string {
	limit := shared.MaxInlineWorkspaces
	if limit <= 0 || limit > len(workspaces) {
		limit = len(workspaces)
	}

	parts := make([]string, 0, limit)
	for _, ws := range workspaces[:limit] {
		parts = append(parts, ws.VersionedName(shared.VersionSeparator))
	}
	return strings.Join(parts, shared.WorkspaceSeparator)
}

// RenderPRTitle renders the configured title template with the derived
// identifiers. pkgName resolves to the release branch, matching the naming
// the operator sees on the remote.
func RenderPRTitle(params *model.ReleaseBranchParams, shared model.SharedOptions) string {
	templateCtx := shared.TemplateContext()
	templateCtx["tagName"] = params.TagName
	templateCtx["pkgName"] = params.ReleaseBranch
	return tmpl.Render(shared.PRTitle, templateCtx)
}

// BuildPRBody renders the PR body: the changelog itself for a single
// workspace, or the per-workspace body template concatenated for a batch.
func BuildPRBody(workspaces []*model.Workspace, shared model.SharedOptions) string {
	if len(workspaces) == 0 {
		return ""
	}
	if len(workspaces) == 1 {
		return workspaces[0].Changelog
	}

	var sb strings.Builder
	for _, ws := range workspaces {
		sb.WriteString(tmpl.Render(shared.PRBody, map[string]any{
			"name":      ws.Name,
			"version":   ws.Version,
			"changelog": ws.Changelog,
			"tagName":   ws.TagName,
			"path":      ws.Path,
		}))
	}
	return sb.String()
}
