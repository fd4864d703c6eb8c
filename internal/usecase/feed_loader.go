// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/gateway"
	"github.com/naka-gawa/portfolio-feed/internal/metrics"
	"github.com/naka-gawa/portfolio-feed/internal/view"
)

// PageSize is the number of repositories requested per load.
const PageSize = 6

// LoadState is the terminal state a single Load call ends in.
type LoadState string

const (
	StateRendered      LoadState = "rendered"
	StateEmptyRendered LoadState = "empty"
	StateErrorRendered LoadState = "error"
	// StateSuperseded means a newer Load on the same container started before
	// this one finished; its result was dropped.
	StateSuperseded LoadState = "superseded"
	// StateSkipped means there was no container to render into.
	StateSkipped LoadState = "skipped"
)

// FeedLoader fetches the repository feed for one fixed identity and renders
// it into containers.
type FeedLoader struct {
	lister   gateway.RepoLister
	username string
	renderer Renderer
	logger   *log.Logger

	mu       sync.Mutex
	inflight map[view.Container]*loadTicket
}

type loadTicket struct {
	cancel context.CancelFunc
}

// NewFeedLoader creates a new FeedLoader instance.
func NewFeedLoader(lister gateway.RepoLister, username string, renderer Renderer, logger *log.Logger) *FeedLoader {
	return &FeedLoader{
		lister:   lister,
		username: username,
		renderer: renderer,
		logger:   logger,
		inflight: make(map[view.Container]*loadTicket),
	}
}

// Username returns the identity whose repositories are loaded.
func (l *FeedLoader) Username() string { return l.username }

// Fetch performs one request for the PageSize most recently updated
// repositories. It never touches a view. Every failure is reported as a
// *domain.FetchError inside the result.
func (l *FeedLoader) Fetch(ctx context.Context) domain.FeedResult {
	start := time.Now()
	repos, err := l.lister.ListRecentRepos(ctx, l.username, PageSize)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = &domain.FetchError{Err: err}
		}
		return domain.Failed(fetchErr)
	}
	return domain.Ok(repos)
}

// Render maps a fetch result to container content without touching any
// container.
func (l *FeedLoader) Render(result domain.FeedResult) view.Content {
	return l.renderer.Render(result)
}

// Load fetches the feed and replaces the content of c with the rendered
// result. A nil container makes Load a no-op.
//
// A Load started on a container that already has one in flight cancels the
// earlier call; only the most recently started Load writes to c. Containers
// are tracked by identity, so c must be comparable. Callers that want reloads
// to supersede each other must share one container across calls.
func (l *FeedLoader) Load(ctx context.Context, c view.Container) LoadState {
	if c == nil {
		return StateSkipped
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ticket := l.begin(c, cancel)

	result := l.Fetch(ctx)
	content := l.renderer.Render(result)

	if !l.commit(c, ticket, content) {
		l.logger.Println("Usecase: feed load superseded by a newer load; result dropped.")
		metrics.FeedLoads.WithLabelValues(string(StateSuperseded)).Inc()
		return StateSuperseded
	}

	state := StateRendered
	switch {
	case result.Err != nil:
		l.logger.Printf("Usecase: failed to load repositories: %v", result.Err)
		state = StateErrorRendered
	case result.IsEmpty():
		state = StateEmptyRendered
	}
	metrics.FeedLoads.WithLabelValues(string(state)).Inc()
	return state
}

func (l *FeedLoader) begin(c view.Container, cancel context.CancelFunc) *loadTicket {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.inflight[c]; ok {
		prev.cancel()
	}
	t := &loadTicket{cancel: cancel}
	l.inflight[c] = t
	return t
}

// commit writes content only if t is still the newest load for c.
func (l *FeedLoader) commit(c view.Container, t *loadTicket, content view.Content) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inflight[c] != t {
		return false
	}
	delete(l.inflight, c)
	c.Replace(content)
	return true
}
