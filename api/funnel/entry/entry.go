package entry

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/household"
	"AgencyFunnelCRM/api/funnel/ingest"
)

type quoteRequest struct {
	UserID      string `json:"user_id"`
	HouseholdID string `json:"household_id"`
	Product     string `json:"product"`
	Premium     string `json:"premium"`
	QuoteDate   string `json:"quote_date"`
	Items       int    `json:"items"`
	ProducerID  string `json:"producer_id"`
}

// CreateQuote records a manually entered quote and escalates the household to
// quoted. Status never regresses: a sold household stays sold.
func CreateQuote(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HouseholdID == "" || req.Product == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		cents, err := ingest.ParsePremiumCents(req.Premium)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		items := req.Items
		if items <= 0 {
			items = 1
		}
		quoteDate := ingest.ParseDate(req.QuoteDate)

		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var quoteID string
		err = tx.QueryRow(ctx, `
			INSERT INTO quotes (household_id, agency_id, product, premium_cents, quote_date,
			                    items, producer_id, provenance)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8)
			RETURNING quote_id
		`, req.HouseholdID, agencyID, req.Product, cents, quoteDate, items,
			req.ProducerID, household.ProvenanceManual).Scan(&quoteID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		_, err = tx.Exec(ctx, `
			UPDATE households SET
				status = CASE WHEN status = 'lead' THEN 'quoted' ELSE status END,
				first_quote_date = COALESCE(first_quote_date, $1),
				updated_at = now()
			WHERE household_id = $2 AND agency_id = $3
		`, quoteDate, req.HouseholdID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"quote_id": quoteID,
		})
	}
}

type saleRequest struct {
	UserID        string `json:"user_id"`
	HouseholdID   string `json:"household_id"`
	Product       string `json:"product"`
	Premium       string `json:"premium"`
	SaleDate      string `json:"sale_date"`
	Items         int    `json:"items"`
	ProducerID    string `json:"producer_id"`
	SourceQuoteID string `json:"source_quote_id"`
	PolicyRef     string `json:"policy_ref"`
}

// CreateSale records a manually entered sale, optionally linked to the quote
// it converted, and marks the household sold.
func CreateSale(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req saleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HouseholdID == "" || req.Product == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		cents, err := ingest.ParsePremiumCents(req.Premium)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		items := req.Items
		if items <= 0 {
			items = 1
		}
		saleDate := ingest.ParseDate(req.SaleDate)

		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var saleID string
		err = tx.QueryRow(ctx, `
			INSERT INTO sales (household_id, agency_id, product, premium_cents, sale_date,
			                   items, producer_id, source_quote_id, policy_ref, provenance)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, NULLIF($8, '')::uuid,
			        NULLIF($9, ''), $10)
			RETURNING sale_id
		`, req.HouseholdID, agencyID, req.Product, cents, saleDate, items,
			req.ProducerID, req.SourceQuoteID, req.PolicyRef, household.ProvenanceManual).Scan(&saleID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		_, err = tx.Exec(ctx, `
			UPDATE households SET status = 'sold', updated_at = now()
			WHERE household_id = $1 AND agency_id = $2
		`, req.HouseholdID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"sale_id": saleID,
		})
	}
}

// ListByHousehold returns a household's quotes and sales side by side.
func ListByHousehold(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		householdID := r.URL.Query().Get("household_id")
		if householdID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "household_id is required")
			return
		}

		quotes := make([]household.Quote, 0)
		rows, err := pool.Query(ctx, `
			SELECT quote_id, household_id, agency_id, product, premium_cents, quote_date,
			       items, COALESCE(producer_id::text, ''), provenance
			FROM quotes
			WHERE household_id = $1 AND agency_id = $2
			ORDER BY quote_date NULLS LAST
		`, householdID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for rows.Next() {
			var q household.Quote
			if err := rows.Scan(&q.ID, &q.HouseholdID, &q.AgencyID, &q.Product, &q.PremiumCents,
				&q.QuoteDate, &q.Items, &q.ProducerID, &q.Provenance); err != nil {
				rows.Close()
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			quotes = append(quotes, q)
		}
		rows.Close()
		if rows.Err() != nil {
			api.RespondWithError(w, http.StatusInternalServerError, rows.Err().Error())
			return
		}

		sales := make([]household.Sale, 0)
		rows, err = pool.Query(ctx, `
			SELECT sale_id, household_id, agency_id, product, premium_cents, sale_date,
			       items, COALESCE(producer_id::text, ''), COALESCE(source_quote_id::text, ''),
			       COALESCE(policy_ref, ''), provenance
			FROM sales
			WHERE household_id = $1 AND agency_id = $2
			ORDER BY sale_date NULLS LAST
		`, householdID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for rows.Next() {
			var s household.Sale
			if err := rows.Scan(&s.ID, &s.HouseholdID, &s.AgencyID, &s.Product, &s.PremiumCents,
				&s.SaleDate, &s.Items, &s.ProducerID, &s.SourceQuoteID, &s.PolicyRef, &s.Provenance); err != nil {
				rows.Close()
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			sales = append(sales, s)
		}
		rows.Close()
		if rows.Err() != nil {
			api.RespondWithError(w, http.StatusInternalServerError, rows.Err().Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"quotes":  quotes,
			"sales":   sales,
		})
	}
}
