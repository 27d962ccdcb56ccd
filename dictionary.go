package hl7

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"
)

var (
	// ErrInvalidSeed indicates bundled or supplied reference data that
	// failed validation at load time
	ErrInvalidSeed = errors.New("invalid seed data")
	// ErrUnknownSegment indicates a segment code with no dictionary entry
	ErrUnknownSegment = errors.New("unknown segment")
	// ErrUnknownField indicates a field number with no definition in an
	// otherwise known segment
	ErrUnknownField = errors.New("unknown field")
)

// ComponentDefinition describes one component of a field, keyed by its
// one-indexed position within the field.
type ComponentDefinition struct {
	Position    int    `json:"position"`
	Name        string `json:"name"`
	DataType    string `json:"dataType"`
	Description string `json:"description,omitempty"`
}

// FieldDefinition is the static reference metadata for one field of a
// segment type. Name and Description are the two editable attributes;
// everything else is read-only after load.
type FieldDefinition struct {
	Field       int                   `json:"field"`
	Name        string                `json:"name"`
	DataType    string                `json:"dataType"`
	Description string                `json:"description"`
	MaxLength   int                   `json:"maxLength,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Components  []ComponentDefinition `json:"components,omitempty"`
}

// Component returns the component definition with the given one-indexed
// position
func (f FieldDefinition) Component(position int) (ComponentDefinition, bool) {
	for _, c := range f.Components {
		if c.Position == position {
			return c, true
		}
	}
	return ComponentDefinition{}, false
}

// SegmentDefinition is the static reference metadata for one segment
// type. Fields is an unordered set keyed by dictionary-declared field
// number; field numbers are not necessarily equal to raw parse-array
// indexes.
type SegmentDefinition struct {
	Segment     string            `json:"segment"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Fields      []FieldDefinition `json:"fields"`
}

// Field returns the field definition with the given dictionary field
// number
func (s SegmentDefinition) Field(number int) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Field == number {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Dictionary is the in-memory table of static per-segment-type metadata,
// loaded once at process start from bundled reference data. Coverage is
// intentionally partial: unknown segment types parse successfully, they
// just have no metadata.
//
// Reads may be concurrent; mutations (ApplyFieldEdit) are serialized and
// must only follow a confirmed persistence round trip.
type Dictionary struct {
	mu       sync.RWMutex
	segments map[string]*SegmentDefinition
}

// NewDictionary loads the bundled segment reference data
func NewDictionary() (*Dictionary, error) {
	return LoadDictionary(segmentSeed)
}

// LoadDictionary builds a Dictionary from seed data: a JSON (or JSONC)
// array of segment definition records. Malformed records are rejected at
// load time rather than propagated as silent lookup misses.
func LoadDictionary(data []byte) (*Dictionary, error) {
	var records []SegmentDefinition
	if err := json.Unmarshal(jsonc.ToJSON(data), &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	d := &Dictionary{
		segments: make(map[string]*SegmentDefinition, len(records)),
	}
	var seedErrors []error
	for i := range records {
		record := records[i]
		if record.Segment == "" {
			seedErrors = append(
				seedErrors,
				fmt.Errorf(
					"%w: record %d has an empty segment code",
					ErrInvalidSeed,
					i,
				),
			)
			continue
		}
		if _, ok := d.segments[record.Segment]; ok {
			seedErrors = append(
				seedErrors,
				fmt.Errorf(
					"%w: duplicate segment code %q",
					ErrInvalidSeed,
					record.Segment,
				),
			)
			continue
		}
		for _, field := range record.Fields {
			if field.Field <= 0 {
				seedErrors = append(
					seedErrors,
					fmt.Errorf(
						"%w: segment %q has a field numbered %d (field numbers start at 1)",
						ErrInvalidSeed,
						record.Segment,
						field.Field,
					),
				)
			}
			for _, component := range field.Components {
				if component.Position <= 0 {
					seedErrors = append(
						seedErrors,
						fmt.Errorf(
							"%w: segment %q field %d has a component positioned %d (positions start at 1)",
							ErrInvalidSeed,
							record.Segment,
							field.Field,
							component.Position,
						),
					)
				}
			}
		}
		d.segments[record.Segment] = &record
	}
	if err := errors.Join(seedErrors...); err != nil {
		return nil, err
	}
	return d, nil
}

// SegmentDefinition returns a copy of the definition for the given
// segment code, and false when the code has no dictionary entry.
func (d *Dictionary) SegmentDefinition(code string) (SegmentDefinition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.segments[code]
	if !ok {
		return SegmentDefinition{}, false
	}
	return copySegmentDefinition(def), true
}

// FieldDefinition returns a copy of the definition for the given segment
// code and dictionary field number, found by scanning the segment's field
// set for a matching field number.
func (d *Dictionary) FieldDefinition(code string, field int) (FieldDefinition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.segments[code]
	if !ok {
		return FieldDefinition{}, false
	}
	fieldDef, ok := def.Field(field)
	if !ok {
		return FieldDefinition{}, false
	}
	return copyFieldDefinition(fieldDef), true
}

// ComponentDefinition returns the definition for the given segment code,
// dictionary field number and one-indexed component position.
func (d *Dictionary) ComponentDefinition(
	code string,
	field int,
	component int,
) (ComponentDefinition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.segments[code]
	if !ok {
		return ComponentDefinition{}, false
	}
	fieldDef, ok := def.Field(field)
	if !ok {
		return ComponentDefinition{}, false
	}
	return fieldDef.Component(component)
}

// KnownSegments returns the sorted set of segment codes that have
// dictionary entries
func (d *Dictionary) KnownSegments() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	codes := make([]string, 0, len(d.segments))
	for code := range d.segments {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ApplyFieldEdit overwrites the name and description of an existing field
// definition in place. It must only be called after the persistence
// collaborator has confirmed the edit; it is never speculative. An
// unknown segment or field number leaves the dictionary untouched and
// returns ErrUnknownSegment or ErrUnknownField.
func (d *Dictionary) ApplyFieldEdit(
	code string,
	field int,
	name string,
	description string,
) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	def, ok := d.segments[code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSegment, code)
	}
	for i := range def.Fields {
		if def.Fields[i].Field == field {
			def.Fields[i].Name = name
			def.Fields[i].Description = description
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%d", ErrUnknownField, code, field)
}

func copySegmentDefinition(def *SegmentDefinition) SegmentDefinition {
	segCopy := *def
	segCopy.Fields = make([]FieldDefinition, len(def.Fields))
	for i, f := range def.Fields {
		segCopy.Fields[i] = copyFieldDefinition(f)
	}
	return segCopy
}

func copyFieldDefinition(def FieldDefinition) FieldDefinition {
	if def.Components == nil {
		return def
	}
	components := make([]ComponentDefinition, len(def.Components))
	copy(components, def.Components)
	def.Components = components
	return def
}
