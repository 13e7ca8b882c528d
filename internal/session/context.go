package session

import (
	"maps"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

// Context is the state of one visit. It is owned by a single goroutine.
type Context struct {
	ID           string
	VisitorID    string
	Screen       Screen
	Language     domain.Language
	flags        map[Screen]bool
	translations map[string]string
}

// NewContext creates a context positioned on Splash with every gate unset.
func NewContext(id, visitorID string) *Context {
	c := &Context{
		ID:           id,
		VisitorID:    visitorID,
		Screen:       Splash,
		Language:     domain.DefaultLanguage,
		flags:        make(map[Screen]bool),
		translations: map[string]string{},
	}
	for _, s := range Screens() {
		if s.Gated() {
			c.flags[s] = false
		}
	}
	return c
}

// SetFlag records the gate result for a gated screen. Ungated screens are
// ignored.
func (c *Context) SetFlag(s Screen, ok bool) {
	if _, gated := c.flags[s]; gated {
		c.flags[s] = ok
	}
}

// GateOpen reports whether forward navigation from s is allowed.
func (c *Context) GateOpen(s Screen) bool {
	ok, gated := c.flags[s]
	return !gated || ok
}

// Flags returns a copy of the gate flags.
func (c *Context) Flags() map[Screen]bool {
	return maps.Clone(c.flags)
}

// SetTranslations replaces the translation table wholesale.
func (c *Context) SetTranslations(t map[string]string) {
	next := make(map[string]string, len(t))
	maps.Copy(next, t)
	c.translations = next
}

// Translations returns a copy of the current table.
func (c *Context) Translations() map[string]string {
	return maps.Clone(c.translations)
}

// T looks up key, returning fallback when it has no value.
func (c *Context) T(key, fallback string) string {
	if v := c.translations[key]; v != "" {
		return v
	}
	return fallback
}
