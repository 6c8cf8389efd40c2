package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMappingSynonyms(t *testing.T) {
	headers := []string{"First Name", "Surname", "Zip Code", "E-Mail", "Annual Premium"}

	m := SuggestMapping(headers)

	require.Contains(t, m, FieldFirstName)
	assert.Equal(t, "First Name", m[FieldFirstName][0])
	require.Contains(t, m, FieldLastName)
	assert.Equal(t, "Surname", m[FieldLastName][0])
	require.Contains(t, m, FieldZip)
	assert.Equal(t, "Zip Code", m[FieldZip][0])
	require.Contains(t, m, FieldEmail)
	assert.Equal(t, "E-Mail", m[FieldEmail][0])
	require.Contains(t, m, FieldPremium)
	assert.Equal(t, "Annual Premium", m[FieldPremium][0])
}

func TestSuggestMappingMultiplePhoneCandidates(t *testing.T) {
	headers := []string{"Name", "Home Phone", "Cell", "Work Tel"}

	m := SuggestMapping(headers)

	require.Contains(t, m, FieldPhone)
	// Every phone-looking column is offered. "Cell" is an exact synonym hit,
	// so it outranks the substring matches.
	assert.Equal(t, []string{"Cell", "Home Phone", "Work Tel"}, m[FieldPhone])
}

func TestSuggestMappingExactBeatsSubstring(t *testing.T) {
	m := SuggestMapping([]string{"lead source notes", "source"})

	require.Contains(t, m, FieldLeadSource)
	assert.Equal(t, "source", m[FieldLeadSource][0])
}

func TestSuggestMappingNoMatches(t *testing.T) {
	m := SuggestMapping([]string{"colA", "colB"})
	assert.Empty(t, m)
}

func TestSuggestMappingCaseInsensitive(t *testing.T) {
	m := SuggestMapping([]string{"FIRST NAME", "LASTNAME"})
	require.Contains(t, m, FieldFirstName)
	require.Contains(t, m, FieldLastName)
}
