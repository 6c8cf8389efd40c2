package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	data := []byte("First Name,Last Name,ZIP\nJohn,Doe,12345\nJane,Smith,54321\n")

	res, err := Parse(data, "leads.csv", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"First Name", "Last Name", "ZIP"}, res.Headers)
	assert.Equal(t, 2, res.TotalRows)
	require.Len(t, res.AllRows, 2)
	assert.Equal(t, "John", res.AllRows[0]["First Name"])
	assert.Equal(t, "54321", res.AllRows[1]["ZIP"])
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("First,Last,ZIP,Phone\nJohn,Doe,12345\nJane,Smith,54321,555-1234\n")

	res, err := Parse(data, "leads.csv", 5)
	require.NoError(t, err)

	require.Len(t, res.AllRows, 2)
	// Missing trailing cell becomes an empty string, not an error.
	assert.Equal(t, "", res.AllRows[0]["Phone"])
	assert.Equal(t, "555-1234", res.AllRows[1]["Phone"])
}

func TestParseSampleRows(t *testing.T) {
	data := []byte("Name\nA\nB\nC\nD\n")

	res, err := Parse(data, "x.csv", 2)
	require.NoError(t, err)

	assert.Len(t, res.SampleRows, 2)
	assert.Len(t, res.AllRows, 4)
	assert.Equal(t, 4, res.TotalRows)
}

func TestParseHeaderOnly(t *testing.T) {
	_, err := Parse([]byte("First,Last,ZIP\n"), "leads.csv", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse([]byte(""), "leads.csv", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("whatever"), "leads.pdf", 5)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupportedExt(t *testing.T) {
	assert.True(t, SupportedExt("leads.csv"))
	assert.True(t, SupportedExt("Leads.XLSX"))
	assert.True(t, SupportedExt("old.xls"))
	assert.False(t, SupportedExt("leads.pdf"))
	assert.False(t, SupportedExt("leads"))
}
