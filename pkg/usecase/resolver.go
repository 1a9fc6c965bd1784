package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/utils/tmpl"
)

// Comparator decides whether a changed file path belongs to a package
// directory. The default is a plain path-prefix match.
type Comparator func(changedPath, dir string) bool

func defaultComparator(changedPath, dir string) bool {
	return strings.HasPrefix(changedPath, dir)
}

// Pick returns the subset of dirs for which at least one changed path
// satisfies the comparator. Result order follows dirs order.
func Pick(changed []string, dirs []string, compare Comparator) []string {
	if compare == nil {
		compare = defaultComparator
	}

	var picked []string
	for _, dir := range dirs {
		for _, path := range changed {
			if compare(path, dir) {
				picked = append(picked, dir)
				break
			}
		}
	}
	return picked
}

// ToChangeLabel derives the change label for a package path from the
// configured label pattern, e.g. "changes:{{path}}".
func ToChangeLabel(path, pattern string) string {
	return tmpl.Render(pattern, map[string]any{
		"path": path,
		"name": filepath.Base(path),
	})
}

// PickByLabels returns the subset of dirs whose derived change label is
// present in labels. Result order follows dirs order.
func PickByLabels(dirs []string, labels []string, pattern string) []string {
	present := make(map[string]bool, len(labels))
	for _, label := range labels {
		present[label] = true
	}

	var picked []string
	for _, dir := range dirs {
		if present[ToChangeLabel(dir, pattern)] {
			picked = append(picked, dir)
		}
	}
	return picked
}

// WorkspaceResolver decides the working set of packages for a release run.
type WorkspaceResolver struct {
	git     interfaces.GitClient
	compare Comparator
}

// ResolverOption configures the workspace resolver
type ResolverOption func(*WorkspaceResolver)

// WithComparator overrides how changed file paths are matched to package
// directories
func WithComparator(compare Comparator) ResolverOption {
	return func(r *WorkspaceResolver) {
		r.compare = compare
	}
}

// NewWorkspaceResolver creates a resolver on top of the git client
func NewWorkspaceResolver(git interfaces.GitClient, opts ...ResolverOption) *WorkspaceResolver {
	r := &WorkspaceResolver{git: git}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve populates rc.Workspaces with the changed packages of this run.
func (r *WorkspaceResolver) Resolve(ctx context.Context, rc *model.ReleaseContext) error {
	logger := ctxlog.From(ctx)
	shared := rc.Shared

	// A pinned workspace disables any further resolution for the run
	if shared.Workspace != "" {
		logger.Info("workspace override configured, skipping change detection",
			"workspace", shared.Workspace)
		ws, err := r.buildWorkspace(ctx, rc, shared.Workspace)
		if err != nil {
			return err
		}
		rc.SetWorkspaces([]*model.Workspace{ws})
		return nil
	}

	picked, err := r.pickChanged(ctx, rc)
	if err != nil {
		return err
	}
	logger.Info("changed packages detected",
		"candidates", len(shared.PackagesDirectories), "picked", picked)

	workspaces := make([]*model.Workspace, 0, len(picked))
	for _, path := range picked {
		ws, err := r.buildWorkspace(ctx, rc, path)
		if err != nil {
			return err
		}
		workspaces = append(workspaces, ws)
	}

	if shared.PublishPath != "" {
		workspaces, err = narrowToPublishPath(workspaces, shared.PublishPath)
		if err != nil {
			return err
		}
	}

	if len(workspaces) == 0 {
		if shared.SkipEmptyCheck {
			logger.Warn("no changed workspaces, continuing because the empty check is disabled")
			rc.SetWorkspaces(workspaces)
			return nil
		}
		return goerr.New("no changes to publish", goerr.T(types.TagConfig))
	}

	rc.SetWorkspaces(workspaces)
	return nil
}

func (r *WorkspaceResolver) pickChanged(ctx context.Context, rc *model.ReleaseContext) ([]string, error) {
	shared := rc.Shared

	if len(shared.ChangeLabels) > 0 {
		return PickByLabels(shared.PackagesDirectories, shared.ChangeLabels, shared.ChangePackagesLabel), nil
	}

	changed, err := r.git.DiffNameOnly(ctx, shared.SourceBranch)
	if err != nil {
		return nil, err
	}
	return Pick(changed, shared.PackagesDirectories, r.compare), nil
}

func (r *WorkspaceResolver) buildWorkspace(ctx context.Context, rc *model.ReleaseContext, path string) (*model.Workspace, error) {
	root := path
	if !filepath.IsAbs(path) {
		root = filepath.Join(rc.Shared.RootPath, path)
	}

	manifest, err := readManifest(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, err
	}

	name, _ := manifest["name"].(string)
	version, _ := manifest["version"].(string)
	if name == "" || version == "" {
		return nil, goerr.New("manifest must declare name and version",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}

	ws := &model.Workspace{
		Name:        name,
		Version:     version,
		Path:        path,
		Root:        root,
		PackageJSON: manifest,
	}

	lastTag, err := r.git.LatestTag(ctx, name+rc.Shared.VersionSeparator)
	if err != nil {
		ctxlog.From(ctx).Warn("could not look up last release tag",
			"workspace", name, "error", err)
	} else {
		ws.LastTag = lastTag
	}

	return ws, nil
}

func readManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}
	if len(manifest) == 0 {
		return nil, goerr.New("manifest is empty",
			goerr.V("path", path), goerr.T(types.TagConfig))
	}
	return manifest, nil
}

func narrowToPublishPath(workspaces []*model.Workspace, publishPath string) ([]*model.Workspace, error) {
	for _, ws := range workspaces {
		if ws.Root == publishPath || ws.Path == publishPath {
			return []*model.Workspace{ws}, nil
		}
	}
	return nil, goerr.New("no workspace matches publishPath",
		goerr.V("publishPath", publishPath), goerr.T(types.TagConfig))
}
