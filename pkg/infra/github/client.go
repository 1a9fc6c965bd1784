// Package github implements the release gateway on the GitHub REST API.
package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

type client struct {
	githubClient *github.Client
	owner        string
	repo         string
}

// Option configures the gateway client
type Option func(c *client) error

// WithToken authenticates with a personal access token
func WithToken(token string) Option {
	return func(c *client) error {
		c.githubClient = c.githubClient.WithAuthToken(token)
		return nil
	}
}

// WithAppAuth authenticates as a GitHub App installation
func WithAppAuth(appID, installationID int64, privateKey []byte) Option {
	return func(c *client) error {
		itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
		if err != nil {
			return goerr.Wrap(err, "failed to create GitHub App transport", goerr.T(types.TagConfig))
		}
		c.githubClient = github.NewClient(&http.Client{Transport: itr})
		return nil
	}
}

// NewClient creates a release gateway for "owner/repo"
func NewClient(repoName string, opts ...Option) (interfaces.ReleaseGateway, error) {
	owner, repo, ok := strings.Cut(repoName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, goerr.New("repoName must be owner/repo",
			goerr.V("repoName", repoName), goerr.T(types.TagConfig))
	}

	c := &client{
		githubClient: github.NewClient(nil),
		owner:        owner,
		repo:         repo,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CreatePullRequest opens a pull request and returns its number and URL
func (c *client) CreatePullRequest(ctx context.Context, pr *model.PullRequestDescriptor) (*model.PullRequest, error) {
	created, _, err := c.githubClient.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Body:  github.String(pr.Body),
		Base:  github.String(pr.Base),
		Head:  github.String(pr.Head),
	})
	if err != nil {
		return nil, classify(err, "failed to create pull request",
			goerr.V("head", pr.Head), goerr.V("base", pr.Base))
	}

	return &model.PullRequest{
		Number: strconv.Itoa(created.GetNumber()),
		URL:    created.GetHTMLURL(),
	}, nil
}

// MergePullRequest merges the pull request with the given merge method
func (c *client) MergePullRequest(ctx context.Context, number string, method string) error {
	n, err := prNumber(number)
	if err != nil {
		return err
	}

	_, _, err = c.githubClient.PullRequests.Merge(ctx, c.owner, c.repo, n, "", &github.PullRequestOptions{
		MergeMethod: method,
	})
	if err != nil {
		return classify(err, "failed to merge pull request",
			goerr.V("number", number), goerr.V("method", method))
	}
	return nil
}

// GetPullRequest fetches a pull request by number
func (c *client) GetPullRequest(ctx context.Context, number string) (*model.PullRequest, error) {
	n, err := prNumber(number)
	if err != nil {
		return nil, err
	}

	pr, _, err := c.githubClient.PullRequests.Get(ctx, c.owner, c.repo, n)
	if err != nil {
		return nil, classify(err, "failed to get pull request", goerr.V("number", number))
	}

	return &model.PullRequest{
		Number: strconv.Itoa(pr.GetNumber()),
		URL:    pr.GetHTMLURL(),
	}, nil
}

// DeleteBranch deletes a remote ref, e.g. "heads/release-1.2.0"
func (c *client) DeleteBranch(ctx context.Context, ref string) error {
	if _, err := c.githubClient.Git.DeleteRef(ctx, c.owner, c.repo, ref); err != nil {
		return classify(err, "failed to delete branch", goerr.V("ref", ref))
	}
	return nil
}

// CreateLabel creates a repository label
func (c *client) CreateLabel(ctx context.Context, label model.Label) (model.Label, error) {
	created, _, err := c.githubClient.Issues.CreateLabel(ctx, c.owner, c.repo, &github.Label{
		Name:        github.String(label.Name),
		Description: github.String(label.Description),
		Color:       github.String(label.Color),
	})
	if err != nil {
		return model.Label{}, classify(err, "failed to create label", goerr.V("name", label.Name))
	}

	return model.Label{
		Name:        created.GetName(),
		Description: created.GetDescription(),
		Color:       created.GetColor(),
	}, nil
}

// AddLabels attaches labels to a pull request
func (c *client) AddLabels(ctx context.Context, number string, labels []string) error {
	n, err := prNumber(number)
	if err != nil {
		return err
	}

	if _, _, err := c.githubClient.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, n, labels); err != nil {
		return classify(err, "failed to add labels",
			goerr.V("number", number), goerr.V("labels", labels))
	}
	return nil
}

// CreateRelease creates a tagged release for the workspace
func (c *client) CreateRelease(ctx context.Context, workspace *model.Workspace) error {
	_, _, err := c.githubClient.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName: github.String(workspace.TagName),
		Name:    github.String(workspace.Name + " " + workspace.TagName),
		Body:    github.String(workspace.Changelog),
	})
	if err != nil {
		return classify(err, "failed to create release",
			goerr.V("workspace", workspace.Name), goerr.V("tag", workspace.TagName))
	}
	return nil
}

func prNumber(number string) (int, error) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid pull request number",
			goerr.V("number", number), goerr.T(types.TagConfig))
	}
	return n, nil
}

// classify wraps a gateway error with the tag matching its HTTP status so the
// pipeline can recover from 404 and 422 responses locally.
func classify(err error, msg string, options ...goerr.Option) error {
	tag := types.TagRemote

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			tag = types.TagRemoteNotFound
		case http.StatusUnprocessableEntity:
			tag = types.TagRemoteConflict
		}
	}

	return goerr.Wrap(err, msg, append(options, goerr.T(tag))...)
}
