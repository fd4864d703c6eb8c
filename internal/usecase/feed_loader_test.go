package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockLister is a mock implementation of the gateway.RepoLister interface.
type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListRecentRepos(ctx context.Context, username string, limit int) ([]domain.RepositorySummary, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositorySummary), args.Error(1)
}

func newTestLoader(lister *mockLister) *FeedLoader {
	return NewFeedLoader(lister, "any-user", Renderer{DateLayout: "1/2/2006"}, log.New(io.Discard, "", 0))
}

func repos(n int) []domain.RepositorySummary {
	out := make([]domain.RepositorySummary, n)
	for i := range out {
		out[i] = domain.RepositorySummary{
			Name:            fmt.Sprintf("repo-%d", i),
			HTMLURL:         fmt.Sprintf("https://github.com/any-user/repo-%d", i),
			StargazersCount: i,
			UpdatedAt:       time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestFeedLoader_Load(t *testing.T) {
	testCases := []struct {
		name             string
		mockRepos        []domain.RepositorySummary
		mockErr          error
		expectedState    LoadState
		expectedCards    int
		expectedFallback string
	}{
		{name: "one repository", mockRepos: repos(1), expectedState: StateRendered, expectedCards: 1},
		{name: "three repositories", mockRepos: repos(3), expectedState: StateRendered, expectedCards: 3},
		{name: "full page", mockRepos: repos(PageSize), expectedState: StateRendered, expectedCards: PageSize},
		{name: "empty list", mockRepos: []domain.RepositorySummary{}, expectedState: StateEmptyRendered, expectedFallback: EmptyMessage},
		{name: "not a list", mockRepos: nil, expectedState: StateEmptyRendered, expectedFallback: EmptyMessage},
		{
			name:             "non-success status",
			mockErr:          &domain.FetchError{Status: 500, Err: domain.ErrNonSuccessStatus},
			expectedState:    StateErrorRendered,
			expectedFallback: ErrorMessage,
		},
		{
			name:             "network failure",
			mockErr:          errors.New("dial tcp: connection refused"),
			expectedState:    StateErrorRendered,
			expectedFallback: ErrorMessage,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lister := new(mockLister)
			lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return(tc.mockRepos, tc.mockErr)
			loader := newTestLoader(lister)

			region := view.NewRegion("repo-list")
			region.Replace(view.Message("Loading..."))

			state := loader.Load(context.Background(), region)

			assert.Equal(t, tc.expectedState, state)
			got := region.Content()
			assert.Len(t, got.Cards, tc.expectedCards)
			assert.Equal(t, tc.expectedFallback, got.Fallback)
			lister.AssertExpectations(t)
		})
	}
}

func TestFeedLoader_Load_NilContainer(t *testing.T) {
	lister := new(mockLister)
	loader := newTestLoader(lister)

	assert.Equal(t, StateSkipped, loader.Load(context.Background(), nil))
	lister.AssertNotCalled(t, "ListRecentRepos", mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedLoader_Load_Idempotent(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return(repos(2), nil)
	loader := newTestLoader(lister)

	once := view.NewRegion("once")
	loader.Load(context.Background(), once)

	twice := view.NewRegion("twice")
	loader.Load(context.Background(), twice)
	loader.Load(context.Background(), twice)

	assert.Equal(t, once.Content(), twice.Content())
	assert.Len(t, twice.Content().Cards, 2)
	lister.AssertNumberOfCalls(t, "ListRecentRepos", 3)
}

func TestFeedLoader_Load_ErrorReplacesCards(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return(repos(2), nil).Once()
	lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return(nil, errors.New("offline")).Once()
	loader := newTestLoader(lister)

	region := view.NewRegion("repo-list")
	require.Equal(t, StateRendered, loader.Load(context.Background(), region))
	require.Equal(t, StateErrorRendered, loader.Load(context.Background(), region))

	assert.Empty(t, region.Content().Cards)
	assert.Equal(t, ErrorMessage, region.Content().Fallback)
}

func TestFeedLoader_Load_AlphaScenario(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return([]domain.RepositorySummary{{
		Name:            "alpha",
		StargazersCount: 10,
		UpdatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Topics:          []string{"go"},
	}}, nil)
	loader := newTestLoader(lister)

	region := view.NewRegion("repo-list")
	loader.Load(context.Background(), region)

	require.Len(t, region.Content().Cards, 1)
	card := region.Content().Cards[0]
	assert.Equal(t, "alpha", card.Name)
	assert.Equal(t, "Mixed", card.Language)
	assert.Equal(t, 10, card.Stars)
	assert.Equal(t, []string{"go"}, card.Topics)
	assert.Equal(t, "1/1/2024", card.Updated)
}

func TestFeedLoader_Fetch_WrapsPlainErrors(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListRecentRepos", mock.Anything, "any-user", PageSize).Return(nil, errors.New("boom"))
	loader := newTestLoader(lister)

	result := loader.Fetch(context.Background())
	var fetchErr *domain.FetchError
	require.ErrorAs(t, result.Err, &fetchErr)
	assert.Contains(t, fetchErr.Error(), "boom")
}

// blockingLister blocks its first call until the context is cancelled and
// answers every later call immediately.
type blockingLister struct {
	started chan struct{}
	calls   int
}

func (b *blockingLister) ListRecentRepos(ctx context.Context, _ string, _ int) ([]domain.RepositorySummary, error) {
	b.calls++
	if b.calls == 1 {
		close(b.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return repos(2), nil
}

func TestFeedLoader_Load_NewerLoadSupersedes(t *testing.T) {
	lister := &blockingLister{started: make(chan struct{})}
	loader := NewFeedLoader(lister, "any-user", Renderer{}, log.New(io.Discard, "", 0))
	region := view.NewRegion("repo-list")

	first := make(chan LoadState, 1)
	go func() {
		first <- loader.Load(context.Background(), region)
	}()
	<-lister.started

	second := loader.Load(context.Background(), region)

	assert.Equal(t, StateRendered, second)
	assert.Equal(t, StateSuperseded, <-first)
	assert.Len(t, region.Content().Cards, 2)
	assert.Empty(t, region.Content().Fallback)
}
