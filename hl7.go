// Package hl7 parses the HL7 v2.x pipe ("ER7") encoding, and provides the
// position-addressing scheme used to attach dictionary metadata and
// operator-configured annotations to individual fields and components.
//
// Parsing is deliberately permissive: the encoding has no rejectable
// grammar, so malformed or truncated input degrades to a Message with
// fewer or emptier fields rather than an error. Escape sequences are
// preserved verbatim, not decoded.
package hl7

import (
	"strings"
)

// Delimiters holds the five reserved characters of a message. The field
// separator is declared by the fourth character of the MSH segment, and
// the remaining four by the encoding-characters field that immediately
// follows it; they are not hard-coded into the format.
type Delimiters struct {
	Field        rune
	Component    rune
	Repetition   rune
	Escape       rune
	SubComponent rune
}

// DefaultDelimiters returns the standard delimiter set (`|^~\&`), used
// when a message does not declare its own.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Field:        defaultFieldSeparator,
		Component:    defaultComponentSeparator,
		Repetition:   defaultRepetitionSeparator,
		Escape:       defaultEscapeCharacter,
		SubComponent: defaultSubComponentSeparator,
	}
}

// EncodingCharacters returns the four encoding characters as they appear
// in MSH-2 (component, repetition, escape, sub-component).
func (d Delimiters) EncodingCharacters() string {
	return string([]rune{d.Component, d.Repetition, d.Escape, d.SubComponent})
}

// delimitersFromMSH reads the declared delimiter set from a raw MSH line.
// The field separator is the character immediately after the segment
// name; the encoding characters are everything between it and the next
// field separator. Missing characters fall back to the defaults, so a
// truncated header still yields a usable delimiter set.
func delimitersFromMSH(line string) Delimiters {
	d := DefaultDelimiters()
	if len(line) <= segmentNameLength {
		return d
	}
	d.Field = rune(line[segmentNameLength])
	encoding := line[segmentNameLength+1:]
	if sep := strings.IndexRune(encoding, d.Field); sep >= 0 {
		encoding = encoding[:sep]
	}
	chars := []rune(encoding)
	if len(chars) > 0 {
		d.Component = chars[0]
	}
	if len(chars) > 1 {
		d.Repetition = chars[1]
	}
	if len(chars) > 2 {
		d.Escape = chars[2]
	}
	if len(chars) > 3 {
		d.SubComponent = chars[3]
	}
	return d
}

// Component is one component-separator-delimited unit within a field.
// Position is the canonical "SEG.field.component" address, with a
// one-indexed component number.
type Component struct {
	Position string `json:"position"`
	Value    string `json:"value"`
}

// Field is one field-separator-delimited unit within a segment.
//
// Components are derived from Value split on the component separator,
// independent of any repetition separators present, and always hold at
// least one element (the whole value). Repetitions are Value split on the
// repetition separator and likewise always hold at least one element.
type Field struct {
	// Position is the canonical "SEG.index" address of the field, where
	// index is the field's position in the segment's parsed field array.
	Position    string       `json:"position"`
	Value       string       `json:"value"`
	Components  []*Component `json:"components"`
	Repetitions []string     `json:"repetitions"`
}

// Segment is one line of a message: a 3-character name followed by
// ordered fields. Fields[0] is always the literal segment name, for every
// segment type.
type Segment struct {
	Name   string   `json:"name"`
	Fields []*Field `json:"fields"`
	// Raw is the original line the segment was parsed from
	Raw        string `json:"-"`
	delimiters Delimiters
}

// FieldValue returns the raw value of the field at the given index in the
// parsed field array, or an empty string if the index is out of range.
func (s *Segment) FieldValue(index int) string {
	if index < 0 || index >= len(s.Fields) {
		return ""
	}
	return s.Fields[index].Value
}

// Field returns the field at the given parse-array index
func (s *Segment) Field(index int) (*Field, bool) {
	if index < 0 || index >= len(s.Fields) {
		return nil, false
	}
	return s.Fields[index], true
}

// String reassembles the segment into its wire form. For any segment
// other than MSH this is the field values joined on the field separator,
// which reproduces the original line exactly. For MSH, the injected
// separator token at index 1 is collapsed back into the separator itself.
func (s *Segment) String() string {
	if len(s.Fields) == 0 {
		return s.Name
	}
	sep := string(s.delimiters.Field)
	values := make([]string, 0, len(s.Fields))
	if s.Name == mshSegmentName && len(s.Fields) > mshIndexFieldSeparator {
		values = append(values, s.Fields[mshIndexSegmentName].Value)
		for i := mshIndexEncodingCharacters; i < len(s.Fields); i++ {
			values = append(values, s.Fields[i].Value)
		}
		return strings.Join(values, sep)
	}
	for _, f := range s.Fields {
		values = append(values, f.Value)
	}
	return strings.Join(values, sep)
}

// Message is the root parse result: an ordered sequence of segments plus
// header values extracted from the MSH segment. A Message is immutable
// once constructed.
type Message struct {
	Segments []*Segment `json:"segments"`
	// MessageType and Timestamp are read from fixed indexes in the parsed
	// MSH field array (see mshIndexTimestamp / mshIndexMessageType), and
	// are empty when the message has no MSH segment or the index is
	// absent.
	MessageType string `json:"messageType"`
	Timestamp   string `json:"timestamp"`
	// Raw is the message text as given to ParseMessage
	Raw string `json:"-"`
	// SourceFile is an optional label identifying where the message text
	// came from
	SourceFile string     `json:"sourceFile,omitempty"`
	Delimiters Delimiters `json:"-"`
}

// Header returns the message's MSH segment, or nil if the first segment
// is not an MSH segment.
func (m *Message) Header() *Segment {
	if len(m.Segments) == 0 || m.Segments[0].Name != mshSegmentName {
		return nil
	}
	return m.Segments[0]
}

// SegmentsNamed returns all segments with the given name, in order.
func (m *Message) SegmentsNamed(name string) []*Segment {
	var segments []*Segment
	for _, s := range m.Segments {
		if s.Name == name {
			segments = append(segments, s)
		}
	}
	return segments
}

// Segment returns the first segment with the given name
func (m *Message) Segment(name string) (*Segment, bool) {
	for _, s := range m.Segments {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// String reassembles the message into its wire form, with segments
// joined by the carriage-return segment terminator.
func (m *Message) String() string {
	lines := make([]string, 0, len(m.Segments))
	for _, s := range m.Segments {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, segmentTerminator)
}

// ParseMessage parses raw pipe-encoded message text into a Message. It
// never fails: empty, truncated or otherwise malformed input produces a
// Message with fewer or emptier segments rather than an error.
func ParseMessage(raw string) *Message {
	return parseMessage(raw, "")
}

// ParseNamedMessage is ParseMessage with a source-file label attached to
// the result, for messages read from a message library on disk.
func ParseNamedMessage(raw string, sourceFile string) *Message {
	return parseMessage(raw, sourceFile)
}

func parseMessage(raw string, sourceFile string) *Message {
	msg := &Message{
		Raw:        raw,
		SourceFile: sourceFile,
		Delimiters: DefaultDelimiters(),
	}
	lines := splitLines(raw)
	if len(lines) > 0 && segmentName(lines[0]) == mshSegmentName {
		msg.Delimiters = delimitersFromMSH(lines[0])
	}
	msg.Segments = make([]*Segment, 0, len(lines))
	for _, line := range lines {
		msg.Segments = append(msg.Segments, parseSegment(line, msg.Delimiters))
	}
	if header := msg.Header(); header != nil {
		msg.Timestamp = header.FieldValue(mshIndexTimestamp)
		msg.MessageType = header.FieldValue(mshIndexMessageType)
	}
	return msg
}
