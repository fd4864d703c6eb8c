// Package view holds the display-side types: the container handle the feed is
// rendered into, the card and fallback view models, and the HTML templates
// that turn them into markup.
package view

import "sync"

// Card is the display form of one repository summary.
type Card struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	Updated     string `json:"updated"`
	// Topics is empty when the tag region must be omitted.
	Topics []string `json:"topics,omitempty"`
}

// Content is everything a container displays: either a list of cards or a
// single fallback message, never both.
type Content struct {
	Cards    []Card
	Fallback string
}

// Message builds fallback-only content.
func Message(text string) Content {
	return Content{Fallback: text}
}

// IsFallback reports whether the content is a fallback message.
func (c Content) IsFallback() bool {
	return c.Fallback != ""
}

// Container is a display region whose content can be replaced wholesale.
type Container interface {
	Replace(Content)
}

// Region is an in-memory Container. It is safe for concurrent use.
type Region struct {
	id string

	mu      sync.RWMutex
	content Content
}

// NewRegion returns an empty region identified by id (the element id it is
// rendered under).
func NewRegion(id string) *Region {
	return &Region{id: id}
}

// ID returns the element id of the region.
func (r *Region) ID() string { return r.id }

// Replace discards the current content and stores c in its place. It is a
// no-op on a nil region.
func (r *Region) Replace(c Content) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cards := make([]Card, len(c.Cards))
	copy(cards, c.Cards)
	r.content = Content{Cards: cards, Fallback: c.Fallback}
}

// Content returns a snapshot of the region's current content.
func (r *Region) Content() Content {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}
