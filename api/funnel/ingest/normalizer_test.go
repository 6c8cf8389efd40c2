package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadMapping = Mapping{
	Fields: map[TargetField]string{
		FieldFirstName: "First",
		FieldLastName:  "Last",
		FieldZip:       "ZIP",
		FieldEmail:     "Email",
	},
	Phones: []string{"Phone 1", "Phone 2"},
}

func TestNormalizeRequiredFields(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []map[string]string{
		{"First": "John", "Last": "Doe", "ZIP": "12345"},
		{"First": "", "Last": "Smith", "ZIP": "12345"},
		{"First": "Jane", "Last": "Smith", "ZIP": "1234"},
		{"First": "Amy", "Last": "Jones", "ZIP": "12345-6789"},
	}

	records, errs := Normalize(rows, leadMapping, ImportLeads, asOf, PhoneMatchDigits)

	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Row)
	assert.Equal(t, "12345", records[1].Zip) // ZIP+4 trimmed

	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Contains(t, errs[0].Message, "first or last name")
	assert.Equal(t, 3, errs[1].Row)
	assert.Contains(t, errs[1].Message, "ZIP")
}

func TestNormalizePremiumRequiredForQuotes(t *testing.T) {
	m := Mapping{Fields: map[TargetField]string{
		FieldFirstName: "First", FieldLastName: "Last", FieldZip: "ZIP",
		FieldPremium: "Premium",
	}}
	asOf := time.Now().UTC()
	rows := []map[string]string{
		{"First": "John", "Last": "Doe", "ZIP": "12345", "Premium": "$1,234.56"},
		{"First": "Jane", "Last": "Doe", "ZIP": "12345", "Premium": "abc"},
		{"First": "Jim", "Last": "Doe", "ZIP": "12345", "Premium": ""},
	}

	records, errs := Normalize(rows, m, ImportQuotes, asOf, PhoneMatchDigits)
	require.Len(t, records, 1)
	assert.Equal(t, int64(123456), records[0].PremiumCents)
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, 3, errs[1].Row)

	// The same bad premium is tolerated on a lead import.
	records, errs = Normalize(rows, m, ImportLeads, asOf, PhoneMatchDigits)
	assert.Len(t, records, 3)
	assert.Empty(t, errs)
}

func TestNormalizeDroppedDate(t *testing.T) {
	m := Mapping{Fields: map[TargetField]string{
		FieldFirstName: "First", FieldLastName: "Last", FieldZip: "ZIP",
		FieldDate: "Date",
	}}
	rows := []map[string]string{
		{"First": "John", "Last": "Doe", "ZIP": "12345", "Date": "01/15/2026"},
		{"First": "Jane", "Last": "Doe", "ZIP": "12345", "Date": "not a date"},
	}

	records, errs := Normalize(rows, m, ImportLeads, time.Now().UTC(), PhoneMatchDigits)
	require.Len(t, records, 2)
	assert.Empty(t, errs)
	require.NotNil(t, records[0].Date)
	assert.Equal(t, 15, records[0].Date.Day())
	assert.Nil(t, records[1].Date) // unparseable date dropped, row kept
}

func TestNormalizeDeterministic(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []map[string]string{
		{"First": " John ", "Last": "Doe", "ZIP": "12345", "Phone 1": "(555) 123-4567"},
	}

	a, aErrs := Normalize(rows, leadMapping, ImportLeads, asOf, PhoneMatchDigits)
	b, bErrs := Normalize(rows, leadMapping, ImportLeads, asOf, PhoneMatchDigits)

	assert.Equal(t, a, b)
	assert.Equal(t, aErrs, bErrs)
	assert.Equal(t, "John", a[0].FirstName)
}

func TestParsePremiumCents(t *testing.T) {
	cents, err := ParsePremiumCents("1234.56")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), cents)

	cents, err = ParsePremiumCents("$2,500")
	require.NoError(t, err)
	assert.Equal(t, int64(250000), cents)

	// Round-half-to-even on the half-cent boundary.
	cents, err = ParsePremiumCents("0.125")
	require.NoError(t, err)
	assert.Equal(t, int64(12), cents)

	cents, err = ParsePremiumCents("0.135")
	require.NoError(t, err)
	assert.Equal(t, int64(14), cents)

	_, err = ParsePremiumCents("0")
	assert.Error(t, err)
	_, err = ParsePremiumCents("-10")
	assert.Error(t, err)
	_, err = ParsePremiumCents("abc")
	assert.Error(t, err)
	_, err = ParsePremiumCents("")
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatCents(123456))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "$1,000,000.00", FormatCents(100000000))
	assert.Equal(t, "-$12.50", FormatCents(-1250))
}

func TestPremiumRoundTrip(t *testing.T) {
	cents, err := ParsePremiumCents("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "$1,234.56", FormatCents(cents))
}

func TestNormalizeZip(t *testing.T) {
	z, ok := NormalizeZip(" 12345 ")
	assert.True(t, ok)
	assert.Equal(t, "12345", z)

	z, ok = NormalizeZip("12345-6789")
	assert.True(t, ok)
	assert.Equal(t, "12345", z)

	for _, bad := range []string{"", "1234", "123456", "12a45", "abcde"} {
		_, ok := NormalizeZip(bad)
		assert.False(t, ok, "zip %q", bad)
	}
}

func TestCollectPhonesDigitsMode(t *testing.T) {
	row := map[string]string{
		"Phone 1": "(555) 123-4567",
		"Phone 2": "555-123-4567",
		"Phone 3": "",
	}
	phones := CollectPhones(row, []string{"Phone 1", "Phone 2", "Phone 3"}, PhoneMatchDigits)
	// Differently formatted but digit-equal numbers collapse; first-seen
	// formatting wins. Blanks are dropped.
	assert.Equal(t, []string{"(555) 123-4567"}, phones)
}

func TestCollectPhonesExactMode(t *testing.T) {
	row := map[string]string{
		"Phone 1": "(555) 123-4567",
		"Phone 2": "555-123-4567",
		"Phone 3": "(555) 123-4567",
		"Phone 4": "",
	}
	phones := CollectPhones(row, []string{"Phone 1", "Phone 2", "Phone 3", "Phone 4"}, PhoneMatchExact)
	// Exact mode only removes byte-identical duplicates and blanks.
	assert.Equal(t, []string{"(555) 123-4567", "555-123-4567"}, phones)
}
