package hl7

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"
)

// ConfigEntry is an operator-authored annotation attached to a position:
// where the value lives in the EMR, free-text notes, and up to three
// screenshot references. Entries are created, updated and removed only in
// response to a confirmed round trip with the persistence collaborator.
//
// In edit form an entry may temporarily carry raw embedded image data (a
// "data:image/...;base64," URI) in ImagePaths; the collaborator converts
// those to stored references and returns the entry normalized.
type ConfigEntry struct {
	FieldPosition string   `json:"fieldPosition"`
	FieldName     string   `json:"fieldName"`
	EMRLocation   string   `json:"emrLocation"`
	ImagePaths    []string `json:"imagePaths"`
	Notes         string   `json:"notes,omitempty"`
}

type configSeed struct {
	Entries []ConfigEntry `json:"entries"`
}

// ConfigTable maps position strings to operator annotations, with a
// strictly one-level, child-to-parent fallback: a component position with
// no entry of its own resolves to its field-level parent, never the
// reverse.
//
// Reads may be concurrent; mutations (Upsert, Remove) are serialized and
// must only follow a confirmed persistence round trip.
type ConfigTable struct {
	mu      sync.RWMutex
	entries map[string]ConfigEntry
	dict    *Dictionary
}

// NewConfigTable loads the bundled annotation data, resolving labels
// against the given dictionary
func NewConfigTable(dict *Dictionary) (*ConfigTable, error) {
	return LoadConfigTable(configurabilitySeed, dict)
}

// LoadConfigTable builds a ConfigTable from seed data: a JSON (or JSONC)
// document of the form {"entries": [...]}. Entries without a position, or
// with more than three image references, are rejected at load time.
func LoadConfigTable(data []byte, dict *Dictionary) (*ConfigTable, error) {
	var seed configSeed
	if err := json.Unmarshal(jsonc.ToJSON(data), &seed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	c := &ConfigTable{
		entries: make(map[string]ConfigEntry, len(seed.Entries)),
		dict:    dict,
	}
	var seedErrors []error
	for i, entry := range seed.Entries {
		if entry.FieldPosition == "" {
			seedErrors = append(
				seedErrors,
				fmt.Errorf(
					"%w: entry %d has an empty field position",
					ErrInvalidSeed,
					i,
				),
			)
			continue
		}
		if len(entry.ImagePaths) > maxImagePaths {
			seedErrors = append(
				seedErrors,
				fmt.Errorf(
					"%w: entry %q has %d image paths (max %d)",
					ErrInvalidSeed,
					entry.FieldPosition,
					len(entry.ImagePaths),
					maxImagePaths,
				),
			)
			continue
		}
		c.entries[entry.FieldPosition] = entry
	}
	if err := errors.Join(seedErrors...); err != nil {
		return nil, err
	}
	return c, nil
}

// IsConfigurable reports whether the given position resolves to an
// annotation, either directly or through its field-level parent
func (c *ConfigTable) IsConfigurable(position string) bool {
	_, ok := c.ConfigFor(position)
	return ok
}

// ConfigFor resolves the annotation for a position. Resolution order:
// exact match first; then, for a component-level position only, the
// field-level parent. Anything else is absent - a field-level lookup
// never falls back to a component-level entry, and fallback never goes
// more than one parent step.
func (c *ConfigTable) ConfigFor(position string) (ConfigEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[position]; ok {
		return copyConfigEntry(entry), true
	}
	p, err := ParsePosition(position)
	if err != nil || !p.HasComponent() {
		return ConfigEntry{}, false
	}
	if entry, ok := c.entries[p.Parent().String()]; ok {
		return copyConfigEntry(entry), true
	}
	return ConfigEntry{}, false
}

// LabelFor returns a display label for a position: the dictionary field
// name, joined with the component name for component-level positions that
// have one. A position the dictionary knows nothing about (or that
// doesn't parse) comes back unchanged, never as an error.
func (c *ConfigTable) LabelFor(position string) string {
	p, err := ParsePosition(position)
	if err != nil {
		return position
	}
	fieldDef, ok := c.dict.FieldDefinition(p.Segment, p.Field)
	if !ok {
		return position
	}
	if p.HasComponent() {
		if componentDef, ok := c.dict.ComponentDefinition(
			p.Segment,
			p.Field,
			p.Component,
		); ok {
			return fieldDef.Name + labelSeparator + componentDef.Name
		}
	}
	return fieldDef.Name
}

// Positions returns the sorted set of position strings that carry
// annotations
func (c *ConfigTable) Positions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	positions := make([]string, 0, len(c.entries))
	for position := range c.entries {
		positions = append(positions, position)
	}
	sort.Strings(positions)
	return positions
}

// Upsert inserts or fully replaces the entry at the given position. It
// must only be called with a persistence-confirmed entry: the
// collaborator may normalize what it stores (image data URIs become
// stored references), and the confirmed entry is kept verbatim, not the
// caller's input.
func (c *ConfigTable) Upsert(position string, entry ConfigEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[position] = copyConfigEntry(entry)
}

// Remove deletes the entry at the given position. It must only be called
// after the persistence collaborator confirms the delete. Removing an
// unconfigured position is a no-op.
func (c *ConfigTable) Remove(position string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, position)
}

func copyConfigEntry(entry ConfigEntry) ConfigEntry {
	if entry.ImagePaths == nil {
		return entry
	}
	paths := make([]string, len(entry.ImagePaths))
	copy(paths, entry.ImagePaths)
	entry.ImagePaths = paths
	return entry
}
