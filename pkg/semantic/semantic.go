// Package semantic provides semantic-type plugins keyed by qualifier.
//
// A semantic type is a named domain (email address, ISO country code, ...)
// whose membership can be tested value by value. The validation engine looks
// plugins up by the identifier recorded in a SemanticType rule and skips the
// rule when no plugin is registered.
package semantic

import (
	"slices"
	"strings"
	"sync"
)

// Plugin tests membership of a single semantic type.
type Plugin interface {
	Qualifier() string
	IsValid(value string) bool
}

// Catalog resolves semantic-type identifiers to plugins.
type Catalog interface {
	Lookup(id string) (Plugin, bool)
}

// Lister is implemented by catalogs that can enumerate their plugins.
type Lister interface {
	Qualifiers() []string
}

// Map is a mutable Catalog keyed case-insensitively by qualifier.
// It is safe for concurrent use.
type Map struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewMap creates a catalog holding the given plugins.
func NewMap(plugins ...Plugin) *Map {
	m := &Map{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		m.Register(p)
	}
	return m
}

// Register adds or replaces a plugin under its qualifier.
func (m *Map) Register(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plugins == nil {
		m.plugins = make(map[string]Plugin)
	}
	m.plugins[key(p.Qualifier())] = p
}

// Alias makes an existing plugin reachable under another identifier.
// It reports false when target is not registered.
func (m *Map) Alias(alias, target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plugins[key(target)]
	if !ok {
		return false
	}
	m.plugins[key(alias)] = p
	return true
}

// Lookup implements Catalog.
func (m *Map) Lookup(id string) (Plugin, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[key(id)]
	return p, ok
}

// Qualifiers returns the distinct qualifiers of the registered plugins, sorted.
func (m *Map) Qualifiers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.plugins))
	for _, p := range m.plugins {
		if !slices.Contains(out, p.Qualifier()) {
			out = append(out, p.Qualifier())
		}
	}
	slices.Sort(out)
	return out
}

// Func adapts a predicate into a Plugin.
type Func struct {
	ID    string
	Check func(string) bool
}

// Qualifier implements Plugin.
func (f Func) Qualifier() string { return f.ID }

// IsValid implements Plugin.
func (f Func) IsValid(value string) bool { return f.Check(value) }

// empty is a Catalog with no plugins.
type empty struct{}

func (empty) Lookup(string) (Plugin, bool) { return nil, false }

// None returns a catalog that resolves nothing.
func None() Catalog { return empty{} }

func key(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
