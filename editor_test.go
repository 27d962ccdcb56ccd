package hl7

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEditor wires an Editor to an httptest collaborator
func newTestEditor(t *testing.T, handler http.HandlerFunc) (*Editor, *Dictionary, *ConfigTable) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dict := testDictionary(t)
	table := emptyConfigTable(t, dict)
	client := NewClient(server.URL, zerolog.Nop())
	return NewEditor(dict, table, client, zerolog.Nop()), dict, table
}

func TestEditorEditField(t *testing.T) {
	editor, dict, _ := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(FieldEditResponse{Success: true})
		},
	)

	err := editor.EditField(
		context.Background(), FieldEditRequest{
			Segment:     "PID",
			FieldIndex:  5,
			Name:        "Legal Name",
			Description: "Edited",
		},
	)
	require.NoError(t, err)

	field, ok := dict.FieldDefinition("PID", 5)
	require.True(t, ok)
	assert.Equal(t, "Legal Name", field.Name)
	assert.Equal(t, "Edited", field.Description)
}

func TestEditorEditFieldRejected(t *testing.T) {
	editor, dict, _ := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(FieldEditResponse{
				Success: false,
				Message: "disk full",
			})
		},
	)

	err := editor.EditField(
		context.Background(), FieldEditRequest{
			Segment:    "PID",
			FieldIndex: 5,
			Name:       "Legal Name",
		},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEditRejected)
	assert.Contains(t, err.Error(), "disk full")

	// A rejected edit leaves the dictionary untouched
	field, ok := dict.FieldDefinition("PID", 5)
	require.True(t, ok)
	assert.Equal(t, "Patient Name", field.Name)
}

func TestEditorEditFieldTransportError(t *testing.T) {
	dict := testDictionary(t)
	table := emptyConfigTable(t, dict)
	// Nothing is listening here
	client := NewClient("http://127.0.0.1:1", zerolog.Nop())
	editor := NewEditor(dict, table, client, zerolog.Nop())

	err := editor.EditField(
		context.Background(), FieldEditRequest{
			Segment:    "PID",
			FieldIndex: 5,
			Name:       "Legal Name",
		},
	)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEditRejected)

	field, ok := dict.FieldDefinition("PID", 5)
	require.True(t, ok)
	assert.Equal(t, "Patient Name", field.Name)
}

func TestEditorConfigure(t *testing.T) {
	confirmed := ConfigEntry{
		FieldPosition: "OBX.5.2",
		FieldName:     "Observation Value Text",
		EMRLocation:   "Results > Flowsheet",
		ImagePaths:    []string{"images/OBX.5.2-1.png"},
	}
	editor, _, table := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ConfigUpsertResponse{
				Success: true,
				Data:    &confirmed,
			})
		},
	)

	entry, err := editor.Configure(
		context.Background(), ConfigUpsertRequest{
			Position:    "OBX.5.2",
			FieldName:   "Observation Value Text",
			EMRLocation: "Results > Flowsheet",
			ImagePaths:  []string{"data:image/png;base64,iVBORw0KGgo="},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, confirmed, entry)

	// The collaborator's normalized entry is stored, not the request
	// payload with its embedded image data
	stored, ok := table.ConfigFor("OBX.5.2")
	require.True(t, ok)
	assert.Equal(t, []string{"images/OBX.5.2-1.png"}, stored.ImagePaths)
}

func TestEditorConfigureRejected(t *testing.T) {
	editor, _, table := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ConfigUpsertResponse{
				Success: false,
				Message: "image too large",
			})
		},
	)

	_, err := editor.Configure(
		context.Background(), ConfigUpsertRequest{Position: "OBX.5.2"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEditRejected)
	assert.False(t, table.IsConfigurable("OBX.5.2"))
}

func TestEditorConfigureMissingData(t *testing.T) {
	editor, _, table := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ConfigUpsertResponse{Success: true})
		},
	)

	_, err := editor.Configure(
		context.Background(), ConfigUpsertRequest{Position: "OBX.5.2"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEditRejected)
	assert.False(t, table.IsConfigurable("OBX.5.2"))
}

func TestEditorUnconfigure(t *testing.T) {
	editor, _, table := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ConfigDeleteResponse{Success: true})
		},
	)
	table.Upsert("PID.18", ConfigEntry{FieldPosition: "PID.18"})

	require.NoError(t, editor.Unconfigure(context.Background(), "PID.18"))
	assert.False(t, table.IsConfigurable("PID.18"))
}

func TestEditorUnconfigureRejected(t *testing.T) {
	editor, _, table := newTestEditor(
		t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ConfigDeleteResponse{
				Success: false,
				Message: "entry is pinned",
			})
		},
	)
	table.Upsert("PID.18", ConfigEntry{FieldPosition: "PID.18"})

	err := editor.Unconfigure(context.Background(), "PID.18")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEditRejected)
	// The entry survives a failed delete
	assert.True(t, table.IsConfigurable("PID.18"))
}
