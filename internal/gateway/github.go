// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/naka-gawa/portfolio-feed/internal/domain"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// RepoLister defines the behavior of a gateway for listing a user's repositories.
type RepoLister interface {
	ListRecentRepos(ctx context.Context, username string, limit int) ([]domain.RepositorySummary, error)
}

// GitHubGateway is the concrete implementation of the RepoLister interface.
// Requests are sent without credentials.
type GitHubGateway struct {
	restClient *github.Client
	logger     *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty baseURL selects DefaultBaseURL.
func NewGitHubGateway(baseURL string, timeout time.Duration, logger *log.Logger) (*GitHubGateway, error) {
	restClient := github.NewClient(&http.Client{Timeout: timeout})
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse api base url %q: %w", baseURL, err)
		}
		restClient.BaseURL = u
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

// ListRecentRepos returns up to limit public repositories of username, most
// recently updated first.
//
// A body that is not a JSON array yields an empty list rather than an error.
// Transport failures, non-2xx statuses and malformed arrays are reported as
// *domain.FetchError.
func (g *GitHubGateway) ListRecentRepos(ctx context.Context, username string, limit int) ([]domain.RepositorySummary, error) {
	g.logger.Printf("Fetching up to %d recently updated repositories for %s...", limit, username)

	path := fmt.Sprintf("users/%s/repos?sort=updated&per_page=%d", url.PathEscape(username), limit)
	req, err := g.restClient.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, &domain.FetchError{Err: fmt.Errorf("failed to build request: %w", err)}
	}

	var raw json.RawMessage
	resp, err := g.restClient.Do(ctx, req, &raw)
	if err != nil {
		status := 0
		if resp != nil && resp.Response != nil {
			status = resp.StatusCode
		}
		if status != 0 && (status < 200 || status > 299) {
			err = fmt.Errorf("%w: %w", domain.ErrNonSuccessStatus, err)
		}
		return nil, &domain.FetchError{Status: status, Err: err}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		g.logger.Println("  Response body is not a list; treating as empty.")
		return nil, nil
	}

	var repos []*github.Repository
	if err := json.Unmarshal(raw, &repos); err != nil {
		return nil, &domain.FetchError{Status: resp.StatusCode, Err: fmt.Errorf("failed to decode repository list: %w", err)}
	}

	summaries := make([]domain.RepositorySummary, 0, len(repos))
	for _, repo := range repos {
		// A null entry carries no repository to show.
		if repo == nil {
			continue
		}
		summaries = append(summaries, toSummary(repo))
	}
	g.logger.Printf("Completed fetching %d repositories.", len(summaries))
	return summaries, nil
}

func toSummary(repo *github.Repository) domain.RepositorySummary {
	return domain.RepositorySummary{
		Name:            repo.GetName(),
		Description:     repo.GetDescription(),
		HTMLURL:         repo.GetHTMLURL(),
		Language:        repo.GetLanguage(),
		StargazersCount: repo.GetStargazersCount(),
		UpdatedAt:       repo.GetUpdatedAt().Time,
		Topics:          repo.Topics,
	}
}
