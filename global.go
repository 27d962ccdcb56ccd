package hl7

const (
	mshSegmentName    = "MSH"
	segmentNameLength = 3

	defaultFieldSeparator        = '|'
	defaultComponentSeparator    = '^'
	defaultRepetitionSeparator   = '~'
	defaultEscapeCharacter       = '\\'
	defaultSubComponentSeparator = '&'

	// defaultEncodingCharacters is the standard MSH-2 value
	defaultEncodingCharacters = "^~\\&"

	// segmentTerminator is the canonical terminator on the wire. Bare
	// newlines are accepted as an equivalent form when reading.
	segmentTerminator = "\r"

	positionSeparator = "."
	labelSeparator    = " › "

	maxImagePaths = 3
)

// Indexes into the parsed field array of an MSH segment. The array is
// built as [segment name, field separator character, encoding characters,
// ...remaining fields], so every index after the encoding characters is
// shifted by two relative to a naive split on the field separator.
const (
	mshIndexSegmentName = iota
	mshIndexFieldSeparator
	mshIndexEncodingCharacters
)

// mshIndexTimestamp and mshIndexMessageType are the indexes in the parsed
// MSH field array that the message timestamp and message type are read
// from. They are carried over from the long-observed behavior of the
// layout above; see DESIGN.md before changing them.
const (
	mshIndexTimestamp   = 6
	mshIndexMessageType = 8
)
