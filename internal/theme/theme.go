package theme

import (
	"sort"
	"sync"
)

// Theme is a named set of CSS custom-property values the renderer applies
// to the widget host element.
type Theme struct {
	Name   string
	Colors map[string]string
}

var builtin = map[string]Theme{
	"classic": {
		Name: "Classic",
		Colors: map[string]string{
			"--chatbot-primary":          "#E94744",
			"--chatbot-primary-hover":    "#D63C25",
			"--chatbot-primary-light":    "#FFEDEF",
			"--chatbot-modal-text":       "black",
			"--chatbot-bg":               "#ffffff",
			"--chatbot-surface":          "white",
			"--chatbot-border":           "#F0E4E7",
			"--chatbot-text-primary":     "#2C1F21",
			"--chatbot-text-secondary":   "#7A5A60",
			"--chatbot-text-inverse":     "#ffffff",
			"--chatbot-footer-text":      "white",
			"--chatbot-message-user-bg":  "#FFEDEF",
			"--chatbot-message-bot-bg":   "#FFEDEF",
			"--chatbot-message-bot-text": "#777777",
		},
	},
	"dark-wine": {
		Name: "Dark-Wine",
		Colors: map[string]string{
			"--chatbot-primary": "#722F37",
		},
	},
}

const defaultTheme = "classic"

// Store persists the single saved preference: the chosen theme name.
type Store interface {
	Load() (string, error)
	Save(name string) error
}

// Manager tracks the active theme for one widget instance.
type Manager struct {
	mu      sync.Mutex
	store   Store
	current string
}

// NewManager restores the saved preference when the store holds a known
// theme, otherwise falls back to the configured theme or "classic".
func NewManager(store Store, fallback string) *Manager {
	m := &Manager{store: store, current: defaultTheme}
	if _, ok := builtin[fallback]; ok {
		m.current = fallback
	}
	if store != nil {
		if saved, err := store.Load(); err == nil {
			if _, ok := builtin[saved]; ok {
				m.current = saved
			}
		}
	}
	return m
}

// Apply switches the active theme and persists the choice.
// Unknown names are rejected.
func (m *Manager) Apply(name string) bool {
	if _, ok := builtin[name]; !ok {
		return false
	}
	m.mu.Lock()
	m.current = name
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Save(name)
	}
	return true
}

func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) Available() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Colors returns the color table of a theme for the renderer.
func (m *Manager) Colors(name string) (map[string]string, bool) {
	th, ok := builtin[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(th.Colors))
	for k, v := range th.Colors {
		out[k] = v
	}
	return out, true
}
