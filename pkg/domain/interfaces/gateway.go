package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// ReleaseGateway defines the remote PR and release operations consumed by the
// pipeline. Errors carry an HTTP-like status used for classification (404,
// 422); see pkg/domain/types tags.
type ReleaseGateway interface {
	// CreatePullRequest opens a pull request and returns its number and URL
	CreatePullRequest(ctx context.Context, pr *model.PullRequestDescriptor) (*model.PullRequest, error)

	// MergePullRequest merges the pull request with the given merge method
	MergePullRequest(ctx context.Context, number string, method string) error

	// GetPullRequest fetches a pull request by number
	GetPullRequest(ctx context.Context, number string) (*model.PullRequest, error)

	// DeleteBranch deletes a remote ref, e.g. "heads/release-1.2.0"
	DeleteBranch(ctx context.Context, ref string) error

	// CreateLabel creates a repository label
	CreateLabel(ctx context.Context, label model.Label) (model.Label, error)

	// AddLabels attaches labels to a pull request
	AddLabels(ctx context.Context, number string, labels []string) error

	// CreateRelease creates a tagged release for the workspace
	CreateRelease(ctx context.Context, workspace *model.Workspace) error
}
