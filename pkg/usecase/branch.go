package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// DefaultDryRunPRNumber is returned by CreatePR in dry-run mode when no
// placeholder is configured.
const DefaultDryRunPRNumber = "999999"

// permissionDeniedMarker appears in git push stderr when the token lacks
// write access to the repository (typical for default workflow tokens).
const permissionDeniedMarker = "remote: Permission to"

// existingPRPattern recovers the PR number from the gateway's 422 message,
// e.g. `A pull request already exists ... (see pull request #42)`. This is a
// compatibility shim against a free-text message; when it does not match the
// error is surfaced instead of guessed at.
var existingPRPattern = regexp.MustCompile(`pull request #(\d+)`)

// BranchManager performs the non-idempotent remote mutations of a release
// (branch push, PR create/merge, label create) safely under retry: "already
// exists" answers are recognized as success and "already gone" answers as
// completed cleanup.
type BranchManager struct {
	git     interfaces.GitClient
	gateway interfaces.ReleaseGateway

	dryRunCreatePR bool
	placeholderPR  string
}

// ManagerOption configures a BranchManager
type ManagerOption func(*BranchManager)

// WithDryRunCreatePR makes CreatePR return the placeholder number without
// calling the gateway even when the run itself is not a dry-run
func WithDryRunCreatePR(enabled bool) ManagerOption {
	return func(m *BranchManager) {
		m.dryRunCreatePR = enabled
	}
}

// WithPlaceholderPRNumber overrides the dry-run PR number
func WithPlaceholderPRNumber(number string) ManagerOption {
	return func(m *BranchManager) {
		if number != "" {
			m.placeholderPR = number
		}
	}
}

// NewBranchManager creates a manager on top of the git client and gateway
func NewBranchManager(git interfaces.GitClient, gateway interfaces.ReleaseGateway, opts ...ManagerOption) *BranchManager {
	m := &BranchManager{
		git:           git,
		gateway:       gateway,
		placeholderPR: DefaultDryRunPRNumber,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateReleaseBranch fetches the source and current branches, cuts the
// release branch from the current branch and pushes it. Push failures caused
// by missing write permission get an operator hint before propagating.
func (m *BranchManager) CreateReleaseBranch(ctx context.Context, rc *model.ReleaseContext, releaseBranch string) error {
	logger := ctxlog.From(ctx)
	shared := rc.Shared

	if err := m.git.Fetch(ctx, "origin", shared.SourceBranch); err != nil {
		return err
	}
	if shared.CurrentBranch != "" && shared.CurrentBranch != shared.SourceBranch {
		if err := m.git.Fetch(ctx, "origin", shared.CurrentBranch); err != nil {
			return err
		}
	}

	if err := m.git.Checkout(ctx, shared.CurrentBranch, false); err != nil {
		return err
	}
	if err := m.git.Checkout(ctx, releaseBranch, true); err != nil {
		return err
	}

	if err := m.git.Push(ctx, releaseBranch); err != nil {
		if strings.Contains(err.Error(), permissionDeniedMarker) {
			logger.Warn("push rejected: the token cannot write to the repository; "+
				"grant the workflow write permissions or use a PAT with repo scope",
				"branch", releaseBranch)
		}
		return err
	}

	logger.Info("release branch pushed", "branch", releaseBranch)
	return nil
}

// EnsureLabel makes sure the configured release label exists remotely. A 422
// name collision means the label is already there and counts as success.
func (m *BranchManager) EnsureLabel(ctx context.Context, rc *model.ReleaseContext) (model.Label, error) {
	logger := ctxlog.From(ctx)
	label := rc.Shared.Label

	if !label.Valid() {
		return model.Label{}, goerr.New("Label is not valid",
			goerr.V("label", label), goerr.T(types.TagConfig))
	}

	if rc.DryRun {
		logger.Info("[dry-run] would create label",
			"name", label.Name, "description", label.Description, "color", label.Color)
		return label, nil
	}

	created, err := m.gateway.CreateLabel(ctx, label)
	if err != nil {
		if goerr.HasTag(err, types.TagRemoteConflict) {
			logger.Warn("label already exists", "name", label.Name)
			return label, nil
		}
		return model.Label{}, err
	}
	return created, nil
}

// CreatePR opens the release pull request and attaches its labels. Calling
// it again for the same head/base recovers the existing PR number from the
// gateway's 422 response. The returned number is never empty on success.
func (m *BranchManager) CreatePR(ctx context.Context, rc *model.ReleaseContext, pr *model.PullRequestDescriptor) (string, error) {
	logger := ctxlog.From(ctx)

	if rc.DryRun || m.dryRunCreatePR {
		logger.Info("[dry-run] would create pull request",
			"title", pr.Title, "base", pr.Base, "head", pr.Head,
			"labels", pr.Labels, "placeholder", m.placeholderPR)
		return m.placeholderPR, nil
	}

	created, err := m.gateway.CreatePullRequest(ctx, pr)
	if err != nil {
		if goerr.HasTag(err, types.TagRemoteConflict) && strings.Contains(err.Error(), "already exists") {
			return recoverExistingPR(ctx, err)
		}
		return "", err
	}

	if created.Number == "" {
		return "", goerr.New("prNumber is empty", goerr.T(types.TagRemote))
	}
	logger.Info("pull request created", "number", created.Number, "url", created.URL)

	// The PR already exists at this point; a label failure is a documented
	// partial-success risk and still propagates to the caller.
	if labels := dedupeLabels(pr.Labels); len(labels) > 0 {
		if err := m.gateway.AddLabels(ctx, created.Number, labels); err != nil {
			logger.Error("failed to attach labels to pull request",
				"number", created.Number, "labels", labels, "error", err)
			return created.Number, err
		}
	}

	return created.Number, nil
}

// recoverExistingPR parses the existing PR number out of the 422 message.
func recoverExistingPR(ctx context.Context, cause error) (string, error) {
	matches := existingPRPattern.FindStringSubmatch(cause.Error())
	if matches == nil {
		return "", goerr.Wrap(cause,
			"pull request already exists but its number could not be recovered from the gateway message")
	}

	number := matches[1]
	ctxlog.From(ctx).Warn("pull request already exists, reusing it", "number", number)
	return number, nil
}

// MergePR merges the release PR with the configured merge method. A missing
// PR number is a benign no-op, not a failure.
func (m *BranchManager) MergePR(ctx context.Context, rc *model.ReleaseContext, prNumber, releaseBranch string) error {
	logger := ctxlog.From(ctx)

	if prNumber == "" {
		logger.Error("cannot merge: prNumber is empty")
		return nil
	}

	method := rc.Shared.AutoMergeType
	if method == "" {
		method = "squash"
	}

	if rc.DryRun {
		logger.Info("[dry-run] would merge pull request",
			"number", prNumber, "method", method,
			"branch", releaseBranch, "repo", rc.Shared.RepoName)
		return nil
	}

	return m.gateway.MergePullRequest(ctx, prNumber, method)
}

// CheckedPR verifies the merged PR and deletes its remote branch. A 404 on
// either call means cleanup already happened and is logged as a warning.
func (m *BranchManager) CheckedPR(ctx context.Context, rc *model.ReleaseContext, prNumber, releaseBranch string) error {
	logger := ctxlog.From(ctx)

	if rc.DryRun {
		logger.Info("[dry-run] would verify pull request and delete branch",
			"number", prNumber, "branch", releaseBranch)
		return nil
	}

	if _, err := m.gateway.GetPullRequest(ctx, prNumber); err != nil {
		if goerr.HasTag(err, types.TagRemoteNotFound) {
			logger.Warn("pull request not found, assuming it was already cleaned up",
				"number", prNumber)
			return nil
		}
		logger.Error("failed to verify pull request", "number", prNumber, "error", err)
		return err
	}

	if err := m.gateway.DeleteBranch(ctx, "heads/"+releaseBranch); err != nil {
		if goerr.HasTag(err, types.TagRemoteNotFound) {
			logger.Warn("release branch already deleted", "branch", releaseBranch)
			return nil
		}
		logger.Error("failed to delete release branch", "branch", releaseBranch, "error", err)
		return err
	}

	logger.Info("release branch deleted", "branch", releaseBranch)
	return nil
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	var out []string
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}
