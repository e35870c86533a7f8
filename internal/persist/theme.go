package persist

import (
	"context"
	"fmt"
)

// Theme is the page color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Icon is the toggle button label: it shows the theme a click switches to.
func (t Theme) Icon() string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// LoadTheme returns the stored theme, else the client's color-scheme
// preference.
func LoadTheme(ctx context.Context, store Store, prefersDark bool) Theme {
	if raw, ok, err := store.Get(ctx, KeyTheme); err == nil && ok {
		switch Theme(raw) {
		case Light, Dark:
			return Theme(raw)
		}
	}
	if prefersDark {
		return Dark
	}
	return Light
}

// SaveTheme stores t.
func SaveTheme(ctx context.Context, store Store, t Theme) error {
	if err := store.Set(ctx, KeyTheme, string(t)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ToggleTheme flips the current theme and stores the result.
func ToggleTheme(ctx context.Context, store Store, prefersDark bool) (Theme, error) {
	next := LoadTheme(ctx, store, prefersDark).Toggled()
	return next, SaveTheme(ctx, store, next)
}
