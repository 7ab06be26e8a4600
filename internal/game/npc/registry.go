package npc

import "fmt"

// Registry holds all known NPC templates keyed by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds tmpl to the registry.
//
// Precondition: tmpl must not be nil and must have passed Validate.
// Postcondition: Returns an error if the ID is already registered.
func (r *Registry) Register(tmpl *Template) error {
	if _, dup := r.templates[tmpl.ID]; dup {
		return fmt.Errorf("npc registry: duplicate template id %q", tmpl.ID)
	}
	r.templates[tmpl.ID] = tmpl
	return nil
}

// Get returns the template for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.templates[id]
	return ok
}

// IDs returns the set of all registered template IDs.
func (r *Registry) IDs() map[string]bool {
	out := make(map[string]bool, len(r.templates))
	for id := range r.templates {
		out[id] = true
	}
	return out
}

// ShopIDs returns the set of shop IDs run by registered NPCs.
func (r *Registry) ShopIDs() map[string]bool {
	out := make(map[string]bool)
	for _, t := range r.templates {
		if t.Shop != "" {
			out[t.Shop] = true
		}
	}
	return out
}

// All returns a snapshot slice of all registered templates.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }
