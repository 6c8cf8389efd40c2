package household

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil)
	require.NoError(t, err)

	assert.Equal(t, "Name,ZIP,Products,Premium,Lead Source,Objection,Producer,Status\n", buf.String())
}

func TestWriteCSVQuoting(t *testing.T) {
	rows := []ExportRow{
		{
			Name:         "Doe, Jr",
			Zip:          "12345",
			Products:     []string{"Auto", "Home"},
			PremiumCents: 123456,
			LeadSource:   "Referral",
			Producer:     "Jane Agent",
			Status:       "sold",
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	out := buf.String()
	// The comma-bearing name and the joined product list are each one quoted
	// cell.
	assert.Contains(t, out, `"Doe, Jr"`)
	assert.Contains(t, out, `"Auto, Home"`)
	assert.Contains(t, out, "$1,234.56")

	// Round-trips through a CSV reader into the same cells.
	r := csv.NewReader(strings.NewReader(out))
	recs, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Doe, Jr", recs[1][0])
	assert.Equal(t, "Auto, Home", recs[1][2])
	assert.Equal(t, "$1,234.56", recs[1][3])
}
