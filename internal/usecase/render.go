package usecase

import (
	"time"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/view"
)

const (
	EmptyMessage    = "No repositories found for this username."
	ErrorMessage    = "Unable to load repositories. Please check your internet connection."
	NoDescription   = "No description provided."
	UnknownLanguage = "Mixed"
	MaxTopics       = 3
)

// Renderer maps a feed result to container content. It is a pure function of
// its input.
type Renderer struct {
	// DateLayout formats the last-updated date, e.g. "1/2/2006".
	DateLayout string
	// Location is the zone dates are shown in; nil means UTC.
	Location *time.Location
}

// Render returns the cards for a successful, non-empty result and the
// matching fallback message otherwise.
func (r Renderer) Render(result domain.FeedResult) view.Content {
	if result.Err != nil {
		return view.Message(ErrorMessage)
	}
	if result.IsEmpty() {
		return view.Message(EmptyMessage)
	}
	cards := make([]view.Card, 0, len(result.Repos))
	for _, repo := range result.Repos {
		cards = append(cards, r.card(repo))
	}
	return view.Content{Cards: cards}
}

func (r Renderer) card(repo domain.RepositorySummary) view.Card {
	c := view.Card{
		Name:        repo.Name,
		Description: repo.Description,
		URL:         repo.HTMLURL,
		Language:    repo.Language,
		Stars:       repo.StargazersCount,
		Updated:     r.date(repo.UpdatedAt),
	}
	if c.Description == "" {
		c.Description = NoDescription
	}
	if c.Language == "" {
		c.Language = UnknownLanguage
	}
	if n := min(len(repo.Topics), MaxTopics); n > 0 {
		c.Topics = append([]string(nil), repo.Topics[:n]...)
	}
	return c
}

func (r Renderer) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := r.DateLayout
	if layout == "" {
		layout = "1/2/2006"
	}
	return t.In(loc).Format(layout)
}
