// Package converter maps literal type names to the functions that turn
// literal text into values.
//
// Values produced by the built-in types are plain Go values:
//
//	boolean -> bool
//	int     -> int64
//	float   -> float64
//	string  -> string
//	list    -> []any
//	object  -> map[string]any
package converter

import (
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gitlab.com/tozd/go/errors"
)

// Func converts literal text into a value. Override is the optional
// replacement text carried by the literal (empty when absent).
type Func func(literal, override string) (any, error)

// Registry is a set of named literal types. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

var defaultRegistry = NewDefault()

// Default returns the process-wide registry. Host applications extend it once
// at startup; pipeline runs take a Snapshot of it.
func Default() *Registry {
	return defaultRegistry
}

// New creates an empty registry
func New() *Registry {
	return &Registry{funcs: map[string]Func{}}
}

// NewDefault creates a registry holding the built-in types
func NewDefault() *Registry {
	r := New()
	for name, fn := range Builtins() {
		r.Register(name, fn)
	}
	return r
}

// Register inserts or overwrites the converter for name
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Deregister removes the converter for name and reports whether it existed
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// IsKnownType reports whether name has a registered converter
func (r *Registry) IsKnownType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// TryConvert converts literal (or override, when set) with the converter
// registered under name.
func (r *Registry) TryConvert(name, literal, override string) (any, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Errorf("missing converter for type %q", name)
	}

	return fn(literal, override)
}

// Types returns the registered type names in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns an independent copy of the registry. Changes to either
// side are not visible in the other.
func (r *Registry) Snapshot() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := &Registry{funcs: make(map[string]Func, len(r.funcs))}
	for name, fn := range r.funcs {
		cp.funcs[name] = fn
	}
	return cp
}

// Suggest returns registered type names that look like a misspelling of
// name, closest first.
func (r *Registry) Suggest(name string) []string {
	if name == "" {
		return nil
	}

	type ranked struct {
		name     string
		distance int
	}

	var candidates []ranked
	for _, t := range r.Types() {
		distance := fuzzy.LevenshteinDistance(name, t)
		if distance <= 2 || fuzzy.MatchFold(name, t) || fuzzy.MatchFold(t, name) {
			candidates = append(candidates, ranked{name: t, distance: distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}
	return out
}

// Effective returns the text a converter should read: the override when it
// is non-empty, the literal otherwise.
func Effective(literal, override string) string {
	if override != "" {
		return override
	}
	return literal
}

// Simple adapts a single-argument conversion into a Func that honors the
// override text.
func Simple(fn func(text string) (any, error)) Func {
	return func(literal, override string) (any, error) {
		return fn(Effective(literal, override))
	}
}
