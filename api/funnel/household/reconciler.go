package household

import (
	"context"
	"fmt"
	"strings"

	"AgencyFunnelCRM/api/funnel/ingest"
)

// Key computes the deterministic natural key for a household. Inputs are
// trimmed and uppercased, so differing case or surrounding whitespace yield
// the same key.
func Key(last, first, zip string) string {
	return fmt.Sprintf("%s_%s_%s",
		strings.ToUpper(strings.TrimSpace(last)),
		strings.ToUpper(strings.TrimSpace(first)),
		strings.TrimSpace(zip),
	)
}

// Outcome describes what one reconciled row did to the household table.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
)

// RowResult carries reconciliation side information back to the upload
// summary.
type RowResult struct {
	Outcome           Outcome
	HouseholdID       string
	UnmatchedProducer string
	NeedsAttention    bool
}

// Reconciler finds-or-creates household aggregates for normalized records and
// attaches product-level quote/sale rows. All persistence goes through Store,
// so the same logic runs against pgx directly or the staff-context function
// transport.
type Reconciler struct {
	store    Store
	agencyID string
}

func NewReconciler(store Store, agencyID string) *Reconciler {
	return &Reconciler{store: store, agencyID: agencyID}
}

// statusForKind derives the status a new household starts in from the import
// flavor that first touched it.
func statusForKind(kind ingest.ImportKind) Status {
	switch kind {
	case ingest.ImportQuotes:
		return StatusQuoted
	case ingest.ImportSales:
		return StatusSold
	}
	return StatusLead
}

// Reconcile processes one normalized record: key lookup, create-or-merge,
// then child row insert for quote/sale kinds. A persistence failure is
// returned to the caller to record against the row; it must not stop the
// batch.
func (r *Reconciler) Reconcile(ctx context.Context, rec ingest.Record, kind ingest.ImportKind) (RowResult, error) {
	var res RowResult

	producerID := ""
	if rec.Producer != "" {
		id, err := r.store.FindProducer(ctx, r.agencyID, rec.Producer)
		if err != nil {
			return res, fmt.Errorf("producer lookup: %w", err)
		}
		if id == "" {
			res.UnmatchedProducer = rec.Producer
		}
		producerID = id
	}

	leadSourceID := ""
	if rec.LeadSource != "" {
		id, err := r.store.FindLeadSource(ctx, r.agencyID, rec.LeadSource)
		if err != nil {
			return res, fmt.Errorf("lead source lookup: %w", err)
		}
		leadSourceID = id
	}

	key := Key(rec.LastName, rec.FirstName, rec.Zip)
	existing, err := r.store.GetByKey(ctx, r.agencyID, key)
	if err != nil {
		return res, fmt.Errorf("household lookup: %w", err)
	}

	var hh *Household
	if existing == nil {
		hh = &Household{
			AgencyID:       r.agencyID,
			HouseholdKey:   key,
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			Zip:            rec.Zip,
			Phones:         rec.Phones,
			Email:          rec.Email,
			Status:         statusForKind(kind),
			NeedsAttention: leadSourceID == "",
			LeadSourceID:   leadSourceID,
			ProducerID:     producerID,
			CreatedAt:      rec.AsOf,
			UpdatedAt:      rec.AsOf,
		}
		if kind == ingest.ImportQuotes && rec.Date != nil {
			hh.FirstQuoteDate = rec.Date
		}
		if err := r.store.Insert(ctx, hh); err != nil {
			return res, fmt.Errorf("household insert: %w", err)
		}
		res.Outcome = OutcomeCreated
	} else {
		hh = existing
		if Merge(hh, rec, kind, leadSourceID, producerID) {
			hh.UpdatedAt = rec.AsOf
			if err := r.store.Update(ctx, hh); err != nil {
				return res, fmt.Errorf("household update: %w", err)
			}
		}
		res.Outcome = OutcomeUpdated
	}
	res.HouseholdID = hh.ID
	res.NeedsAttention = hh.NeedsAttention

	switch kind {
	case ingest.ImportQuotes:
		q := &Quote{
			HouseholdID:  hh.ID,
			AgencyID:     r.agencyID,
			Product:      rec.Product,
			PremiumCents: rec.PremiumCents,
			QuoteDate:    rec.Date,
			Items:        rec.Items,
			ProducerID:   producerID,
			Provenance:   ProvenanceImport,
		}
		if err := r.store.InsertQuote(ctx, q); err != nil {
			return res, fmt.Errorf("quote insert: %w", err)
		}
	case ingest.ImportSales:
		s := &Sale{
			HouseholdID:  hh.ID,
			AgencyID:     r.agencyID,
			Product:      rec.Product,
			PremiumCents: rec.PremiumCents,
			SaleDate:     rec.Date,
			Items:        rec.Items,
			ProducerID:   producerID,
			PolicyRef:    rec.PolicyRef,
			Provenance:   ProvenanceImport,
		}
		if err := r.store.InsertSale(ctx, s); err != nil {
			return res, fmt.Errorf("sale insert: %w", err)
		}
	}
	return res, nil
}

// Merge folds a record into an existing household non-destructively and
// reports whether anything changed. Status never regresses, blanks never
// overwrite non-blank values, and explicit new phone/email/lead-source values
// replace stale ones. needs_attention clears only once a lead source is
// known.
func Merge(hh *Household, rec ingest.Record, kind ingest.ImportKind, leadSourceID, producerID string) bool {
	changed := false

	target := statusForKind(kind)
	if statusRank[target] > statusRank[hh.Status] {
		hh.Status = target
		changed = true
	}

	if len(rec.Phones) > 0 {
		merged := mergePhones(hh.Phones, rec.Phones)
		if len(merged) != len(hh.Phones) {
			hh.Phones = merged
			changed = true
		}
	}
	if rec.Email != "" && rec.Email != hh.Email {
		hh.Email = rec.Email
		changed = true
	}
	if leadSourceID != "" && leadSourceID != hh.LeadSourceID {
		hh.LeadSourceID = leadSourceID
		changed = true
	}
	if hh.NeedsAttention && hh.LeadSourceID != "" {
		hh.NeedsAttention = false
		changed = true
	}
	if producerID != "" && hh.ProducerID == "" {
		hh.ProducerID = producerID
		changed = true
	}
	if kind == ingest.ImportQuotes && hh.FirstQuoteDate == nil && rec.Date != nil {
		hh.FirstQuoteDate = rec.Date
		changed = true
	}
	return changed
}

// mergePhones appends new numbers to the existing ordered list, skipping
// digit-equal duplicates.
func mergePhones(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[digitsOf(p)] = true
	}
	out := existing
	for _, p := range incoming {
		d := digitsOf(p)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, p)
	}
	return out
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
