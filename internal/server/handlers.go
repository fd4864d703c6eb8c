package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/usecase"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"golang.org/x/sync/errgroup"
)

const visitorCookie = "portfolio_visitor"

// visitorID returns the visitor's id, issuing a new cookie when the request
// carries none or an invalid one.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) themeService(visitor string) *usecase.ThemeService {
	return usecase.NewThemeService(usecase.NewStoredPreferences(s.prefs, visitor, s.logger), s.logger)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w, r)
	region := view.NewRegion("repo-list")
	theme := domain.DefaultTheme

	// The theme lookup and the feed fetch are independent; run them together.
	// A failed lookup keeps the default theme and never cancels the fetch.
	var eg errgroup.Group
	eg.Go(func() error {
		s.loader.Load(r.Context(), region)
		return nil
	})
	eg.Go(func() error {
		t, err := s.themeService(visitor).Current(r.Context())
		if err != nil {
			return err
		}
		theme = t
		return nil
	})
	if err := eg.Wait(); err != nil {
		s.logger.Printf("Server: reading theme preference failed, using default: %v", err)
	}

	page := view.Page{
		Owner:           s.loader.Username(),
		Theme:           theme,
		Year:            s.now().Year(),
		ScrollThreshold: s.cfg.ScrollThreshold,
		Feed:            region.Content(),
		Map:             s.cfg.Map,
		Globe:           s.cfg.Globe,
	}
	s.writeHTML(w, func(buf *bytes.Buffer) error { return view.RenderPage(buf, page) })
}

func (s *Server) handleFeedFragment(w http.ResponseWriter, r *http.Request) {
	region := view.NewRegion("repo-list")
	s.loader.Load(r.Context(), region)
	s.writeHTML(w, func(buf *bytes.Buffer) error { return view.RenderFeed(buf, region.Content()) })
}

func (s *Server) writeHTML(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Printf("Server: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

type feedResponse struct {
	Repos []domain.RepositorySummary `json:"repos"`
	Error string                     `json:"error,omitempty"`
}

func (s *Server) handleFeedJSON(w http.ResponseWriter, r *http.Request) {
	result := s.loader.Fetch(r.Context())
	resp := feedResponse{Repos: result.Repos}
	status := http.StatusOK
	if result.Err != nil {
		s.logger.Printf("Server: failed to load repositories: %v", result.Err)
		resp.Error = usecase.ErrorMessage
		status = http.StatusBadGateway
	}
	if resp.Repos == nil {
		resp.Repos = []domain.RepositorySummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w, r)
	if _, err := s.themeService(visitor).Toggle(r.Context()); err != nil {
		s.logger.Printf("Server: theme toggle failed: %v", err)
		http.Error(w, "could not store theme preference", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
