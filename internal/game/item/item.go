// Package item provides item definitions and the registry the action
// dispatcher and validator resolve item references against.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind constants for Def.Kind.
const (
	KindQuest      = "quest"
	KindConsumable = "consumable"
	KindEquipment  = "equipment"
	KindJunk       = "junk"
)

// validKinds is the set of valid item kinds.
var validKinds = map[string]bool{
	KindQuest:      true,
	KindConsumable: true,
	KindEquipment:  true,
	KindJunk:       true,
}

// Def defines the static properties of an item loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Kind        string `yaml:"kind"`
	Stackable   bool   `yaml:"stackable,omitempty"`
	MaxStack    int    `yaml:"max_stack,omitempty"`
	Value       int    `yaml:"value,omitempty"`
}

// Validate checks that the Def satisfies its invariants.
//
// Postcondition: Returns nil iff all fields are valid; aggregates every
// violation into one error otherwise.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of quest, consumable, equipment, junk; got %q", d.Kind))
	}
	if d.Stackable && d.MaxStack < 1 {
		errs = append(errs, errors.New("max_stack must be >= 1 for stackable items"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("value must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds all loaded item definitions indexed by ID.
type Registry struct {
	items map[string]*Def
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Def)}
}

// Register adds d to the registry.
//
// Precondition: d must not be nil and must have passed Validate.
// Postcondition: Item(d.ID) returns d; returns an error if d.ID is already
// registered.
func (r *Registry) Register(d *Def) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("item registry: id %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the Def for id, or (nil, false) if not found.
func (r *Registry) Item(id string) (*Def, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Has reports whether id is registered. Satisfies action.ItemCatalog.
func (r *Registry) Has(id string) bool {
	_, ok := r.items[id]
	return ok
}

// IDs returns the set of all registered item IDs.
func (r *Registry) IDs() map[string]bool {
	out := make(map[string]bool, len(r.items))
	for id := range r.items {
		out[id] = true
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.items) }

// LoadDefFromBytes parses a single item definition from raw YAML bytes.
//
// Postcondition: Returns a validated *Def or a non-nil error.
func LoadDefFromBytes(data []byte) (*Def, error) {
	var d Def
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing item YAML: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDefs reads all *.yaml files in dir and returns the parsed definitions.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all definitions or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadDefs(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading item dir %q: %w", dir, err)
	}

	var defs []*Def
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		d, err := LoadDefFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}
