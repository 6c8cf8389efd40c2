package household

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AgencyFunnelCRM/api/funnel/ingest"
)

// memStore is an in-memory Store for exercising the reconciler without a
// database.
type memStore struct {
	households map[string]*Household // by key
	quotes     []*Quote
	sales      []*Sale
	producers  map[string]string // lower(name or code) -> id
	sources    map[string]string // lower(name) -> id
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		households: map[string]*Household{},
		producers:  map[string]string{},
		sources:    map[string]string{},
	}
}

func (s *memStore) GetByKey(_ context.Context, agencyID, key string) (*Household, error) {
	hh, ok := s.households[agencyID+"/"+key]
	if !ok {
		return nil, nil
	}
	cp := *hh
	cp.Phones = append([]string(nil), hh.Phones...)
	return &cp, nil
}

func (s *memStore) Insert(_ context.Context, hh *Household) error {
	s.nextID++
	hh.ID = fmt.Sprintf("hh-%d", s.nextID)
	cp := *hh
	s.households[hh.AgencyID+"/"+hh.HouseholdKey] = &cp
	return nil
}

func (s *memStore) Update(_ context.Context, hh *Household) error {
	cp := *hh
	s.households[hh.AgencyID+"/"+hh.HouseholdKey] = &cp
	return nil
}

func (s *memStore) InsertQuote(_ context.Context, q *Quote) error {
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *memStore) InsertSale(_ context.Context, sale *Sale) error {
	s.sales = append(s.sales, sale)
	return nil
}

func (s *memStore) FindProducer(_ context.Context, _, nameOrCode string) (string, error) {
	return s.producers[strings.ToLower(nameOrCode)], nil
}

func (s *memStore) FindLeadSource(_ context.Context, _, name string) (string, error) {
	return s.sources[strings.ToLower(name)], nil
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("Doe", "John", "12345")
	b := Key("Doe", "John", "12345")
	assert.Equal(t, a, b)
	assert.Equal(t, "DOE_JOHN_12345", a)
}

func TestKeyNormalizesCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, Key("Doe", "John", "12345"), Key(" doe ", "JOHN ", " 12345"))
}

func TestReconcileCreatesHousehold(t *testing.T) {
	store := newMemStore()
	store.sources["referral"] = "src-1"
	r := NewReconciler(store, "agency-1")
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rec := ingest.Record{
		Row: 1, FirstName: "John", LastName: "Doe", Zip: "12345",
		Phones: []string{"555-123-4567"}, LeadSource: "Referral", AsOf: asOf,
	}
	res, err := r.Reconcile(context.Background(), rec, ingest.ImportLeads)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.False(t, res.NeedsAttention)

	hh, err := store.GetByKey(context.Background(), "agency-1", "DOE_JOHN_12345")
	require.NoError(t, err)
	require.NotNil(t, hh)
	assert.Equal(t, StatusLead, hh.Status)
	assert.Equal(t, "src-1", hh.LeadSourceID)
}

func TestReconcileUnknownSourceNeedsAttention(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store, "agency-1")

	rec := ingest.Record{FirstName: "John", LastName: "Doe", Zip: "12345", LeadSource: "Mystery Vendor"}
	res, err := r.Reconcile(context.Background(), rec, ingest.ImportLeads)
	require.NoError(t, err)
	assert.True(t, res.NeedsAttention)
}

func TestReconcileUnmatchedProducer(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store, "agency-1")

	rec := ingest.Record{FirstName: "John", LastName: "Doe", Zip: "12345", Producer: "Nobody Known"}
	res, err := r.Reconcile(context.Background(), rec, ingest.ImportLeads)
	require.NoError(t, err)
	assert.Equal(t, "Nobody Known", res.UnmatchedProducer)
}

func TestReconcileQuoteInsertsChildRow(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store, "agency-1")
	quoteDate := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	rec := ingest.Record{
		FirstName: "John", LastName: "Doe", Zip: "12345",
		Product: "Auto", PremiumCents: 123456, Date: &quoteDate, Items: 2,
	}
	_, err := r.Reconcile(context.Background(), rec, ingest.ImportQuotes)
	require.NoError(t, err)

	hh, _ := store.GetByKey(context.Background(), "agency-1", "DOE_JOHN_12345")
	require.NotNil(t, hh)
	assert.Equal(t, StatusQuoted, hh.Status)
	require.NotNil(t, hh.FirstQuoteDate)
	assert.True(t, hh.FirstQuoteDate.Equal(quoteDate))

	require.Len(t, store.quotes, 1)
	assert.Equal(t, hh.ID, store.quotes[0].HouseholdID)
	assert.Equal(t, int64(123456), store.quotes[0].PremiumCents)
	assert.Equal(t, ProvenanceImport, store.quotes[0].Provenance)
}

func TestMergeIdempotentNoStatusRegress(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store, "agency-1")

	// Household already quoted.
	quoteRec := ingest.Record{FirstName: "John", LastName: "Doe", Zip: "12345", Product: "Auto", PremiumCents: 100}
	_, err := r.Reconcile(context.Background(), quoteRec, ingest.ImportQuotes)
	require.NoError(t, err)

	// Reconciling the same lead row twice must not regress the status or
	// create a second household.
	leadRec := ingest.Record{FirstName: "John", LastName: "Doe", Zip: "12345"}
	for i := 0; i < 2; i++ {
		res, err := r.Reconcile(context.Background(), leadRec, ingest.ImportLeads)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, res.Outcome)
	}

	assert.Len(t, store.households, 1)
	hh, _ := store.GetByKey(context.Background(), "agency-1", "DOE_JOHN_12345")
	assert.Equal(t, StatusQuoted, hh.Status)
}

func TestMergeBlanksNeverOverwrite(t *testing.T) {
	hh := &Household{
		Status: StatusQuoted,
		Phones: []string{"555-111-2222"},
		Email:  "john@example.com",
	}
	changed := Merge(hh, ingest.Record{}, ingest.ImportLeads, "", "")
	assert.False(t, changed)
	assert.Equal(t, "john@example.com", hh.Email)
	assert.Equal(t, []string{"555-111-2222"}, hh.Phones)
}

func TestMergeAddsNewPhoneSkipsDigitEqual(t *testing.T) {
	hh := &Household{Status: StatusLead, Phones: []string{"(555) 111-2222"}}

	rec := ingest.Record{Phones: []string{"555-111-2222", "555-333-4444"}}
	changed := Merge(hh, rec, ingest.ImportLeads, "", "")
	assert.True(t, changed)
	assert.Equal(t, []string{"(555) 111-2222", "555-333-4444"}, hh.Phones)
}

func TestMergeClearsNeedsAttentionWhenSourceKnown(t *testing.T) {
	hh := &Household{Status: StatusLead, NeedsAttention: true}

	changed := Merge(hh, ingest.Record{}, ingest.ImportLeads, "src-1", "")
	assert.True(t, changed)
	assert.Equal(t, "src-1", hh.LeadSourceID)
	assert.False(t, hh.NeedsAttention)
}

func TestMergeProducerFillsOnlyWhenEmpty(t *testing.T) {
	hh := &Household{Status: StatusLead, ProducerID: "tm-1"}

	Merge(hh, ingest.Record{}, ingest.ImportLeads, "", "tm-2")
	assert.Equal(t, "tm-1", hh.ProducerID)

	hh.ProducerID = ""
	Merge(hh, ingest.Record{}, ingest.ImportLeads, "", "tm-2")
	assert.Equal(t, "tm-2", hh.ProducerID)
}

// Three-row scenario: a valid row, a row missing its ZIP, and a duplicate of
// row 1 carrying a new phone number. One household is created then updated in
// place.
func TestEndToEndThreeRowBatch(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := ingest.Mapping{
		Fields: map[ingest.TargetField]string{
			ingest.FieldFirstName: "First",
			ingest.FieldLastName:  "Last",
			ingest.FieldZip:       "ZIP",
		},
		Phones: []string{"Phone"},
	}
	rows := []map[string]string{
		{"First": "John", "Last": "Doe", "ZIP": "12345", "Phone": "555-111-2222"},
		{"First": "Jane", "Last": "Smith", "ZIP": "", "Phone": ""},
		{"First": "john", "Last": "DOE", "ZIP": "12345", "Phone": "555-333-4444"},
	}

	records, errs := ingest.Normalize(rows, m, ingest.ImportLeads, asOf, ingest.PhoneMatchDigits)
	require.Len(t, records, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)

	store := newMemStore()
	r := NewReconciler(store, "agency-1")
	var created, updated int
	for _, rec := range records {
		res, err := r.Reconcile(context.Background(), rec, ingest.ImportLeads)
		require.NoError(t, err)
		switch res.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeUpdated:
			updated++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, updated)
	assert.Len(t, store.households, 1)

	hh, _ := store.GetByKey(context.Background(), "agency-1", "DOE_JOHN_12345")
	require.NotNil(t, hh)
	assert.Equal(t, []string{"555-111-2222", "555-333-4444"}, hh.Phones)
}
