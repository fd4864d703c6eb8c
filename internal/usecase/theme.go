package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/metrics"
	"github.com/naka-gawa/portfolio-feed/internal/store"
)

// ThemeKey is the store key the theme preference lives under.
const ThemeKey = "theme"

// Preferences reads and writes the theme preference.
type Preferences interface {
	Get(ctx context.Context) (domain.Theme, error)
	Set(ctx context.Context, theme domain.Theme) error
	// Update replaces the theme with fn(current) atomically and returns the
	// stored result.
	Update(ctx context.Context, fn func(current domain.Theme) domain.Theme) (domain.Theme, error)
}

// StoredPreferences is the Preferences implementation backed by a key-value
// store. The scope isolates one visitor's preference from another's.
type StoredPreferences struct {
	store store.Store
	key   string
	// onInvalid is told about stored values that do not parse.
	onInvalid func(value string)
}

// NewStoredPreferences creates a new StoredPreferences instance.
func NewStoredPreferences(s store.Store, scope string, logger *log.Logger) *StoredPreferences {
	return &StoredPreferences{
		store: s,
		key:   store.Key(scope, ThemeKey),
		onInvalid: func(value string) {
			logger.Printf("Usecase: ignoring unknown stored theme %q", value)
		},
	}
}

// Get returns the stored theme, or domain.DefaultTheme when nothing valid is
// stored.
func (p *StoredPreferences) Get(ctx context.Context) (domain.Theme, error) {
	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme preference: %w", err)
	}
	return p.parse(raw, true), nil
}

// parse maps a stored value to a theme; anything unset or unknown is the
// default.
func (p *StoredPreferences) parse(raw string, found bool) domain.Theme {
	if !found {
		return domain.DefaultTheme
	}
	theme, err := domain.ParseTheme(raw)
	if err != nil {
		p.onInvalid(raw)
		return domain.DefaultTheme
	}
	return theme
}

// Set stores theme.
func (p *StoredPreferences) Set(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := p.store.Set(ctx, p.key, string(theme)); err != nil {
		return fmt.Errorf("failed to write theme preference: %w", err)
	}
	return nil
}

// Update applies fn to the stored theme in one atomic store operation.
func (p *StoredPreferences) Update(ctx context.Context, fn func(current domain.Theme) domain.Theme) (domain.Theme, error) {
	raw, err := p.store.Update(ctx, p.key, func(current string, found bool) (string, error) {
		next := fn(p.parse(current, found))
		if _, err := domain.ParseTheme(string(next)); err != nil {
			return "", err
		}
		return string(next), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to update theme preference: %w", err)
	}
	return domain.Theme(raw), nil
}

// ThemeService is the use case behind the theme toggle.
type ThemeService struct {
	prefs  Preferences
	logger *log.Logger
}

// NewThemeService creates a new ThemeService instance.
func NewThemeService(prefs Preferences, logger *log.Logger) *ThemeService {
	return &ThemeService{prefs: prefs, logger: logger}
}

// Current returns the active theme.
func (s *ThemeService) Current(ctx context.Context) (domain.Theme, error) {
	return s.prefs.Get(ctx)
}

// Toggle flips the active theme, stores it and returns it. Concurrent toggles
// of the same preference each take effect.
func (s *ThemeService) Toggle(ctx context.Context) (domain.Theme, error) {
	var current domain.Theme
	next, err := s.prefs.Update(ctx, func(t domain.Theme) domain.Theme {
		current = t
		return t.Toggle()
	})
	if err != nil {
		return "", err
	}
	s.logger.Printf("Usecase: theme toggled %s -> %s", current, next)
	metrics.ThemeToggles.WithLabelValues(string(next)).Inc()
	return next, nil
}

// Set stores an explicit theme.
func (s *ThemeService) Set(ctx context.Context, theme domain.Theme) error {
	return s.prefs.Set(ctx, theme)
}
