package models

// ReleaseContributor is a commit author credited on a release
type ReleaseContributor struct {
	Username string `json:"username"`
	Commits  int    `json:"commits"`
}

// Release represents a published release with its top contributors
type Release struct {
	Repo         string               `json:"repo"`
	RepoSlug     string               `json:"repoSlug"`
	Version      string               `json:"version"`
	Date         string               `json:"date"`
	Summary      string               `json:"summary"`
	Contributors []ReleaseContributor `json:"contributors"`
	GithubURL    string               `json:"githubUrl"`
}

// TrackedRepository is a repository whose releases are published
type TrackedRepository struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Slug string `json:"slug" yaml:"slug" mapstructure:"slug"`
}
