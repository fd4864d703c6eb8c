// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// RepositorySummary is the per-repository record returned by the remote listing endpoint.
// It is owned by the remote service; this application only reads it.
type RepositorySummary struct {
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language,omitempty"`
	StargazersCount int       `json:"stargazers_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	Topics          []string  `json:"topics,omitempty"`
}

// FeedResult is the outcome of a single feed fetch: either a sequence of
// summaries or the error that prevented getting one. Exactly one of the two
// is meaningful; Err takes precedence.
type FeedResult struct {
	Repos []RepositorySummary
	Err   error
}

// Ok builds a successful FeedResult.
func Ok(repos []RepositorySummary) FeedResult {
	return FeedResult{Repos: repos}
}

// Failed builds a failed FeedResult.
func Failed(err error) FeedResult {
	return FeedResult{Err: err}
}

// IsEmpty reports whether the fetch succeeded but returned nothing to show.
func (r FeedResult) IsEmpty() bool {
	return r.Err == nil && len(r.Repos) == 0
}
