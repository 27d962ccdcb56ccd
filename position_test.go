package hl7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionString(t *testing.T) {
	assert.Equal(t, "PID.3", FieldPosition("PID", 3).String())
	assert.Equal(t, "PID.3.4", ComponentPosition("PID", 3, 4).String())
	assert.Equal(t, "MSH.0", FieldPosition("MSH", 0).String())
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input string
		want  Position
	}{
		{"PID.3", Position{Segment: "PID", Field: 3}},
		{"PID.3.4", Position{Segment: "PID", Field: 3, Component: 4}},
		{"OBX.5.2", Position{Segment: "OBX", Field: 5, Component: 2}},
		{"MSH.0", Position{Segment: "MSH", Field: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			p, err := ParsePosition(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p)
			// Positions round-trip losslessly
			assert.Equal(t, tc.input, p.String())
		})
	}
}

func TestParsePositionMalformed(t *testing.T) {
	inputs := []string{
		"",
		"PID",
		"PID.3.4.5",
		"PID.x",
		"PID.3.y",
		"PID..",
		"just some text",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePosition(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPosition)
		})
	}
}

func TestPositionParent(t *testing.T) {
	component := ComponentPosition("OBX", 5, 2)
	parent := component.Parent()
	assert.Equal(t, "OBX.5", parent.String())
	assert.False(t, parent.HasComponent())
	// Parent of a field-level position is itself
	assert.Equal(t, parent, parent.Parent())
}
