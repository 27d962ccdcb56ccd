package hl7

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPosition indicates a position string that does not have the
// "SEG.field" or "SEG.field.component" form
var ErrMalformedPosition = errors.New("malformed position")

// Position is the canonical address of a field or component within a
// segment type: "SEG.field" or "SEG.field.component". Field is the index
// into the segment's parsed field array (which, for MSH, carries the
// separator and encoding-characters tokens at indexes 1 and 2).
// Component is one-indexed, with zero meaning the position addresses a
// whole field.
//
// The rendered string is the single key used for every dictionary and
// configurability lookup, and round-trips losslessly through
// ParsePosition.
type Position struct {
	Segment   string
	Field     int
	Component int
}

// FieldPosition returns the position of a whole field
func FieldPosition(segment string, field int) Position {
	return Position{Segment: segment, Field: field}
}

// ComponentPosition returns the position of a single component within a
// field. The component number is one-indexed.
func ComponentPosition(segment string, field int, component int) Position {
	return Position{Segment: segment, Field: field, Component: component}
}

// HasComponent reports whether the position addresses a component rather
// than a whole field
func (p Position) HasComponent() bool {
	return p.Component > 0
}

// Parent returns the field-level position for a component-level position.
// For a field-level position it returns the position unchanged.
func (p Position) Parent() Position {
	p.Component = 0
	return p
}

func (p Position) String() string {
	var b strings.Builder
	b.WriteString(p.Segment)
	b.WriteString(positionSeparator)
	b.WriteString(strconv.Itoa(p.Field))
	if p.HasComponent() {
		b.WriteString(positionSeparator)
		b.WriteString(strconv.Itoa(p.Component))
	}
	return b.String()
}

// ParsePosition parses a canonical position string. It is total over
// arbitrary input: a string without exactly 2 or 3 dot-separated parts,
// or whose numeric parts do not parse as integers, returns an error
// wrapping ErrMalformedPosition rather than panicking.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, positionSeparator)
	if len(parts) != 2 && len(parts) != 3 {
		return Position{}, fmt.Errorf(
			"%w: expected 2 or 3 dot-separated parts, got %d in %q",
			ErrMalformedPosition,
			len(parts),
			s,
		)
	}
	field, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, fmt.Errorf(
			"%w: field index %q is not an integer",
			ErrMalformedPosition,
			parts[1],
		)
	}
	p := Position{Segment: parts[0], Field: field}
	if len(parts) == 3 {
		component, err := strconv.Atoi(parts[2])
		if err != nil {
			return Position{}, fmt.Errorf(
				"%w: component index %q is not an integer",
				ErrMalformedPosition,
				parts[2],
			)
		}
		p.Component = component
	}
	return p, nil
}
