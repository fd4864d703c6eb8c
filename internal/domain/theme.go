package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Theme is the visitor's colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme applies when no preference has been stored yet.
const DefaultTheme = ThemeLight

// ErrUnknownTheme is returned when a value does not name a known theme.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme validates a stored or user-supplied theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// BodyClass is the CSS class applied to the page body for this theme.
func (t Theme) BodyClass() string {
	if t == ThemeDark {
		return "dark-theme"
	}
	return "light-theme"
}

// Icon is the Font Awesome class shown on the toggle. It shows the theme the
// toggle switches to.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "fa-sun"
	}
	return "fa-moon"
}
