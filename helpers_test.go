package hl7

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ormMessage loads the ORM^O01 fixture. Fixture files keep one segment
// per line with ordinary newlines so they stay readable; the parser
// accepts those as segment terminators.
func ormMessage(t *testing.T) string {
	t.Helper()
	return fixture(t, "orm.hl7")
}

// adtMessage loads the ADT^A01 fixture
func adtMessage(t *testing.T) string {
	t.Helper()
	return fixture(t, "adt.hl7")
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

// testDictionary loads the bundled dictionary seed
func testDictionary(t *testing.T) *Dictionary {
	t.Helper()
	dict, err := NewDictionary()
	require.NoError(t, err)
	return dict
}

// emptyConfigTable returns a table with no entries, for tests that build
// up their own state via Upsert
func emptyConfigTable(t *testing.T, dict *Dictionary) *ConfigTable {
	t.Helper()
	table, err := LoadConfigTable([]byte(`{"entries": []}`), dict)
	require.NoError(t, err)
	return table
}
