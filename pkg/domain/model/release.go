package model

// ReleaseBranchParams is the derived identifier pair for one release run. It
// is recomputed per run and never persisted.
type ReleaseBranchParams struct {
	TagName       string
	ReleaseBranch string
}

// PullRequestDescriptor holds the fields submitted to the release gateway when
// opening a release PR. Only the returned PR number is retained afterwards.
type PullRequestDescriptor struct {
	Title  string
	Body   string
	Base   string
	Head   string
	Labels []string
}

// PullRequest is the gateway's view of an open release PR. Numbers are kept
// as strings because dry-run placeholders and numbers recovered from error
// messages never pass through an integer type.
type PullRequest struct {
	Number string
	URL    string
}

// Label is the release label descriptor supplied via configuration. It is
// compared against remote state by name for idempotence.
type Label struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Valid reports whether all label fields required by the gateway are present.
func (l Label) Valid() bool {
	return l.Name != "" && l.Description != "" && l.Color != ""
}
