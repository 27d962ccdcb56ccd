package hl7

import (
	"strconv"
	"strings"
)

// lineEndingReplacer normalizes the segment terminators a message may
// arrive with (`\r\n`, `\r`, `\n`, in any mixture) to a single form
var lineEndingReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
)

// splitLines normalizes line terminators and splits raw message text into
// one string per segment, discarding blank and whitespace-only lines. An
// empty or entirely blank input yields an empty slice.
func splitLines(raw string) []string {
	normalized := lineEndingReplacer.Replace(raw)
	lines := strings.Split(normalized, "\n")
	segments := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		segments = append(segments, line)
	}
	return segments
}

// segmentName returns the first 3 characters of the line, or the whole
// line when it's shorter than that
func segmentName(line string) string {
	if len(line) < segmentNameLength {
		return line
	}
	return line[:segmentNameLength]
}

// parseSegment splits one non-empty line into a Segment.
//
// For MSH, the field array is [name, fieldSeparator, ...rest], where rest
// is the substring starting immediately after the fourth character split
// on the field separator; the encoding characters therefore land at index
// 2, and all later fields are shifted by two relative to a naive split. A
// header shorter than four characters degenerates to an empty rest.
//
// For every other segment the line is split on the field separator
// directly, so the first token (and Fields[0]) is the segment name as it
// appeared on the wire.
func parseSegment(line string, d Delimiters) *Segment {
	name := segmentName(line)
	seg := &Segment{Name: name, Raw: line, delimiters: d}

	var tokens []string
	if name == mshSegmentName {
		rest := ""
		if len(line) > segmentNameLength+1 {
			rest = line[segmentNameLength+1:]
		}
		tokens = append(tokens, name, string(d.Field))
		tokens = append(tokens, strings.Split(rest, string(d.Field))...)
	} else {
		tokens = strings.Split(line, string(d.Field))
	}

	seg.Fields = make([]*Field, 0, len(tokens))
	for i, token := range tokens {
		seg.Fields = append(
			seg.Fields,
			parseField(token, FieldPosition(name, i), d),
		)
	}
	return seg
}

// parseField splits one raw field value into repetitions and components.
// Repetitions come from splitting on the repetition separator. Components
// come from splitting the whole raw value on the component separator,
// independent of any repetitions present, with one-indexed positions
// appended to the field's position. Both always hold at least one
// element: the value itself.
func parseField(value string, position Position, d Delimiters) *Field {
	f := &Field{
		Position:    position.String(),
		Value:       value,
		Repetitions: strings.Split(value, string(d.Repetition)),
	}
	componentValues := strings.Split(value, string(d.Component))
	f.Components = make([]*Component, 0, len(componentValues))
	for i, v := range componentValues {
		f.Components = append(
			f.Components, &Component{
				Position: f.Position + positionSeparator + strconv.Itoa(i+1),
				Value:    v,
			},
		)
	}
	return f
}
