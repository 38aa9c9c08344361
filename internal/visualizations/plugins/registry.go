package plugins

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of the plugin registry.
//
//	plugins:
//	  - name: trackster
//	    html: Trackster
//	    embeddable: false
//	    entry_point: {file: trackster.js}
type file struct {
	Plugins []map[string]any `yaml:"plugins"`
}

// Registry maps visualization types to plugin descriptors. Descriptors are
// opaque: whatever keys the file carries are returned as-is.
type Registry struct {
	path string

	mu      sync.RWMutex
	plugins map[string]map[string]any
}

// NewRegistry returns an empty registry backed by path. Call Reload to read it.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, plugins: map[string]map[string]any{}}
}

// Load creates a registry and reads path once.
func Load(path string) (*Registry, error) {
	r := NewRegistry(path)
	if err := r.Reload(); err != nil {
		return r, err
	}
	return r, nil
}

// Reload re-reads the registry file. On error the previous contents stay.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read plugins file: %w", err)
	}
	plugins, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}

	r.mu.Lock()
	r.plugins = plugins
	r.mu.Unlock()
	return nil
}

// Parse decodes a registry document keyed by plugin name.
func Parse(data []byte) (map[string]map[string]any, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse plugins: %w", err)
	}

	out := make(map[string]map[string]any, len(f.Plugins))
	for i, p := range f.Plugins {
		name, _ := p["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("plugin %d: missing name", i)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("plugin %q defined twice", name)
		}
		out[name] = p
	}
	return out, nil
}

// Plugin returns a copy of the descriptor registered for a visualization type.
func (r *Registry) Plugin(name string) (map[string]any, bool) {
	r.mu.RLock()
	p, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, true
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
