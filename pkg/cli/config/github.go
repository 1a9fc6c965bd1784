package config

import (
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	githubinfra "github.com/m-mizutani/drover/pkg/infra/github"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// GitHub holds gateway authentication configuration. Either a token
// (GITHUB_TOKEN / PAT_TOKEN) or GitHub App credentials must be present.
type GitHub struct {
	Token          string
	AppID          string
	InstallationID string
	PrivateKey     string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars(types.EnvGitHubToken, types.EnvPATToken),
		},
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (alternative to a token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DROVER_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DROVER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("DROVER_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Gateway builds the release gateway for "owner/repo". Missing credentials
// abort the run before any mutation.
func (c *GitHub) Gateway(repoName string) (interfaces.ReleaseGateway, error) {
	switch {
	case c.Token != "":
		return githubinfra.NewClient(repoName, githubinfra.WithToken(c.Token))

	case c.AppID != "" && c.InstallationID != "" && c.PrivateKey != "":
		appID, err := strconv.ParseInt(c.AppID, 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub App ID", goerr.T(types.TagConfig))
		}
		installationID, err := strconv.ParseInt(c.InstallationID, 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub installation ID", goerr.T(types.TagConfig))
		}
		key, err := os.ReadFile(c.PrivateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.T(types.TagConfig))
		}
		return githubinfra.NewClient(repoName, githubinfra.WithAppAuth(appID, installationID, key))

	default:
		return nil, goerr.New("GitHub credentials are required: set GITHUB_TOKEN, PAT_TOKEN or App credentials",
			goerr.T(types.TagConfig))
	}
}
