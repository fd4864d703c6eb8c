package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the page's script and stylesheet, rooted so that
// "page.js" and "page.css" are top-level names.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// MapSettings parameterises the static background map mounted at #map-bg.
type MapSettings struct {
	Latitude  float64
	Longitude float64
	Zoom      int
	TileURL   string
	// DriftX and DriftY are the pan offset in pixels; the direction flips
	// every DriftInterval.
	DriftX        int
	DriftY        int
	DriftInterval time.Duration
}

// DriftIntervalMillis is DriftInterval expressed in milliseconds.
func (m MapSettings) DriftIntervalMillis() int64 {
	return m.DriftInterval.Milliseconds()
}

// GlobeSettings parameterises the rotating globe mounted at #globe-canvas.
type GlobeSettings struct {
	TextureURL     string
	RotationStep   float64
	CameraDistance float64
}

// DefaultMapSettings centres the map over the Himalaya.
func DefaultMapSettings() MapSettings {
	return MapSettings{
		Latitude:      30.0,
		Longitude:     78.0,
		Zoom:          5,
		TileURL:       "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		DriftX:        20,
		DriftY:        4,
		DriftInterval: 8 * time.Second,
	}
}

// DefaultGlobeSettings returns the blue-marble globe.
func DefaultGlobeSettings() GlobeSettings {
	return GlobeSettings{
		TextureURL:     "https://unpkg.com/three-globe/example/img/earth-blue-marble.jpg",
		RotationStep:   0.0018,
		CameraDistance: 3.2,
	}
}

// Page is the data behind the full portfolio page.
type Page struct {
	Owner string
	Theme domain.Theme
	Year  int
	// ScrollThreshold is the scroll offset in pixels past which the
	// scroll-to-top button is shown.
	ScrollThreshold int
	Feed            Content
	Map             MapSettings
	Globe           GlobeSettings
}

// RenderFeed writes the markup for the content of the repo-list region.
func RenderFeed(w io.Writer, c Content) error {
	if err := templates.ExecuteTemplate(w, "feed", c); err != nil {
		return fmt.Errorf("rendering feed: %w", err)
	}
	return nil
}

// RenderPage writes the full portfolio page.
func RenderPage(w io.Writer, p Page) error {
	if err := templates.ExecuteTemplate(w, "page", p); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
