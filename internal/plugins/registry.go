package plugins

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Registry is the concurrency-safe plugin collection the workflow and
// the home page read. Callers receive copies; only the manager mutates
// entries.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Add registers a plugin. Names are unique.
func (r *Registry) Add(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Name()]; ok {
		return ErrDuplicate
	}
	r.plugins[p.Name()] = p
	return nil
}

// Get returns the named plugin.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// update applies fn to the named plugin under the write lock.
func (r *Registry) update(name string, fn func(*Plugin)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plugins[name]
	if !ok {
		return false
	}
	fn(&p)
	r.plugins[name] = p
	return true
}

// All returns every registered plugin sorted by name.
func (r *Registry) All() []Plugin {
	return r.filter(func(Plugin) bool { return true })
}

// Configured returns the plugins that loaded successfully, sorted by name.
func (r *Registry) Configured() []Plugin {
	return r.filter(Plugin.Configured)
}

// ByCategory returns plugins in the given category, sorted by name. An
// empty category matches everything.
func (r *Registry) ByCategory(category string) []Plugin {
	if category == "" {
		return r.All()
	}
	return r.filter(func(p Plugin) bool { return p.Manifest.Category == category })
}

// Len reports the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

func (r *Registry) filter(keep func(Plugin) bool) []Plugin {
	r.mu.RLock()
	out := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	collator := collate.New(language.English)
	sort.Slice(out, func(i, j int) bool {
		return collator.CompareString(out[i].Name(), out[j].Name()) < 0
	})
	return out
}
