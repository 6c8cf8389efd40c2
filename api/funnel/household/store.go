package household

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence contract the reconciler runs against. The pgx
// implementation writes directly; the staff-context implementation routes the
// same operations through privileged function endpoints. Lookups return the
// zero value, not an error, when nothing matches.
type Store interface {
	GetByKey(ctx context.Context, agencyID, key string) (*Household, error)
	Insert(ctx context.Context, hh *Household) error
	Update(ctx context.Context, hh *Household) error
	InsertQuote(ctx context.Context, q *Quote) error
	InsertSale(ctx context.Context, s *Sale) error
	FindProducer(ctx context.Context, agencyID, nameOrCode string) (string, error)
	FindLeadSource(ctx context.Context, agencyID, name string) (string, error)
}

// PgxStore persists households and their child rows through a pgx pool.
type PgxStore struct {
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool}
}

func (s *PgxStore) GetByKey(ctx context.Context, agencyID, key string) (*Household, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT household_id, agency_id, household_key, first_name, last_name, zip,
		       phones, COALESCE(email, ''), status, needs_attention,
		       COALESCE(lead_source_id::text, ''), COALESCE(producer_id::text, ''),
		       COALESCE(objection_id::text, ''), first_quote_date, created_at, updated_at
		FROM households
		WHERE agency_id = $1 AND household_key = $2
	`, agencyID, key)
	var hh Household
	err := row.Scan(
		&hh.ID, &hh.AgencyID, &hh.HouseholdKey, &hh.FirstName, &hh.LastName, &hh.Zip,
		&hh.Phones, &hh.Email, &hh.Status, &hh.NeedsAttention,
		&hh.LeadSourceID, &hh.ProducerID, &hh.ObjectionID,
		&hh.FirstQuoteDate, &hh.CreatedAt, &hh.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hh, nil
}

func (s *PgxStore) Insert(ctx context.Context, hh *Household) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO households (
			agency_id, household_key, first_name, last_name, zip, phones, email,
			status, needs_attention, lead_source_id, producer_id, first_quote_date,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NULLIF($7, ''),
			$8, $9, NULLIF($10, '')::uuid, NULLIF($11, '')::uuid, $12, $13, $13
		) RETURNING household_id
	`,
		hh.AgencyID, hh.HouseholdKey, hh.FirstName, hh.LastName, hh.Zip, hh.Phones, hh.Email,
		hh.Status, hh.NeedsAttention, hh.LeadSourceID, hh.ProducerID, hh.FirstQuoteDate,
		hh.CreatedAt,
	).Scan(&hh.ID)
}

func (s *PgxStore) Update(ctx context.Context, hh *Household) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE households SET
			phones = $1, email = NULLIF($2, ''), status = $3, needs_attention = $4,
			lead_source_id = NULLIF($5, '')::uuid, producer_id = NULLIF($6, '')::uuid,
			objection_id = NULLIF($7, '')::uuid, first_quote_date = $8, updated_at = $9
		WHERE household_id = $10
	`,
		hh.Phones, hh.Email, hh.Status, hh.NeedsAttention,
		hh.LeadSourceID, hh.ProducerID, hh.ObjectionID, hh.FirstQuoteDate, hh.UpdatedAt,
		hh.ID,
	)
	return err
}

func (s *PgxStore) InsertQuote(ctx context.Context, q *Quote) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO quotes (
			household_id, agency_id, product, premium_cents, quote_date, items,
			producer_id, provenance
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8)
		RETURNING quote_id
	`,
		q.HouseholdID, q.AgencyID, q.Product, q.PremiumCents, q.QuoteDate, q.Items,
		q.ProducerID, q.Provenance,
	).Scan(&q.ID)
}

func (s *PgxStore) InsertSale(ctx context.Context, sale *Sale) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO sales (
			household_id, agency_id, product, premium_cents, sale_date, items,
			producer_id, source_quote_id, policy_ref, provenance
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, NULLIF($8, '')::uuid,
		          NULLIF($9, ''), $10)
		RETURNING sale_id
	`,
		sale.HouseholdID, sale.AgencyID, sale.Product, sale.PremiumCents, sale.SaleDate,
		sale.Items, sale.ProducerID, sale.SourceQuoteID, sale.PolicyRef, sale.Provenance,
	).Scan(&sale.ID)
}

// FindProducer matches a team member by display name or producer code,
// case-insensitively.
func (s *PgxStore) FindProducer(ctx context.Context, agencyID, nameOrCode string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT team_member_id FROM team_members
		WHERE agency_id = $1
		  AND (LOWER(name) = LOWER($2) OR LOWER(producer_code) = LOWER($2))
	`, agencyID, nameOrCode).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PgxStore) FindLeadSource(ctx context.Context, agencyID, name string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT lead_source_id FROM lead_sources
		WHERE agency_id = $1 AND LOWER(name) = LOWER($2)
	`, agencyID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
