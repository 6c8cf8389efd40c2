package funnelboard

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/ingest"
)

type sourceRoiRow struct {
	LeadSourceID     string  `json:"lead_source_id"`
	Name             string  `json:"name"`
	BucketID         string  `json:"bucket_id,omitempty"`
	BucketName       string  `json:"bucket_name,omitempty"`
	SelfGenerated    bool    `json:"self_generated"`
	Leads            int64   `json:"leads"`
	Quoted           int64   `json:"quoted"`
	Sold             int64   `json:"sold"`
	CloseRate        float64 `json:"close_rate"`
	SpendCents       int64   `json:"spend_cents"`
	Spend            string  `json:"spend"`
	SoldPremiumCents int64   `json:"sold_premium_cents"`
	SoldPremium      string  `json:"sold_premium"`
	// CPA is spend divided by sold count; omitted for self-generated
	// sources and when nothing sold.
	CPACents int64 `json:"cpa_cents"`
	CPA      string `json:"cpa,omitempty"`
}

// sourceRoiQuery aggregates per lead source: funnel counts, accrued spend
// from the marketing_spend ledger plus per-unit cost times lead volume, and
// sold premium.
const sourceRoiQuery = `
	SELECT
		ls.lead_source_id,
		ls.name,
		COALESCE(ls.bucket_id::text, ''),
		COALESCE(mb.name, ''),
		ls.self_generated,
		COUNT(DISTINCT h.household_id),
		COUNT(DISTINCT h.household_id) FILTER (WHERE h.status IN ('quoted', 'sold')),
		COUNT(DISTINCT h.household_id) FILTER (WHERE h.status = 'sold'),
		COALESCE((
			SELECT SUM(ms.amount_cents) FROM marketing_spend ms
			WHERE ms.lead_source_id = ls.lead_source_id
		), 0) + CASE
			WHEN ls.self_generated THEN 0
			WHEN ls.cost_type IN ('per_lead', 'per_transfer', 'per_mailer')
				THEN ls.cost_cents * COUNT(DISTINCT h.household_id)
			ELSE 0
		END,
		COALESCE((
			SELECT SUM(s.premium_cents) FROM sales s
			JOIN households sh ON sh.household_id = s.household_id
			WHERE sh.lead_source_id = ls.lead_source_id AND s.agency_id = $1
		), 0)
	FROM lead_sources ls
	LEFT JOIN marketing_buckets mb ON mb.bucket_id = ls.bucket_id
	LEFT JOIN households h ON h.lead_source_id = ls.lead_source_id
	WHERE ls.agency_id = $1
	GROUP BY ls.lead_source_id, ls.name, ls.bucket_id, mb.name,
	         ls.self_generated, ls.cost_type, ls.cost_cents
	ORDER BY ls.name
`

func fetchSourceRoi(pool *pgxpool.Pool, r *http.Request, agencyID string) ([]sourceRoiRow, error) {
	rows, err := pool.Query(r.Context(), sourceRoiQuery, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []sourceRoiRow{}
	for rows.Next() {
		var row sourceRoiRow
		if err := rows.Scan(
			&row.LeadSourceID, &row.Name, &row.BucketID, &row.BucketName,
			&row.SelfGenerated, &row.Leads, &row.Quoted, &row.Sold,
			&row.SpendCents, &row.SoldPremiumCents,
		); err != nil {
			return nil, err
		}
		row.CloseRate = closeRate(row.Sold, row.Quoted)
		row.Spend = ingest.FormatCents(row.SpendCents)
		row.SoldPremium = ingest.FormatCents(row.SoldPremiumCents)
		if !row.SelfGenerated && row.Sold > 0 {
			row.CPACents = row.SpendCents / row.Sold
			row.CPA = ingest.FormatCents(row.CPACents)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSourceRoi lists per-lead-source acquisition cost against sold premium.
// Self-generated sources carry zero spend and no cost-per-acquisition.
func GetSourceRoi(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agencyID := api.GetAgencyIDFromCtx(r.Context())

		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}

		out, err := fetchSourceRoi(pool, r, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

type bucketRoiRow struct {
	BucketID         string  `json:"bucket_id"`
	Name             string  `json:"name"`
	Leads            int64   `json:"leads"`
	Sold             int64   `json:"sold"`
	SpendCents       int64   `json:"spend_cents"`
	Spend            string  `json:"spend"`
	SoldPremiumCents int64   `json:"sold_premium_cents"`
	SoldPremium      string  `json:"sold_premium"`
	ROI              float64 `json:"roi"`
}

// GetBucketRoi rolls the per-source numbers up into marketing buckets.
// Sources without a bucket land in an "Unbucketed" row.
func GetBucketRoi(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agencyID := api.GetAgencyIDFromCtx(r.Context())

		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}

		sources, err := fetchSourceRoi(pool, r, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		order := []string{}
		byBucket := map[string]*bucketRoiRow{}
		for _, src := range sources {
			id, name := src.BucketID, src.BucketName
			if id == "" {
				name = "Unbucketed"
			}
			row, ok := byBucket[id]
			if !ok {
				row = &bucketRoiRow{BucketID: id, Name: name}
				byBucket[id] = row
				order = append(order, id)
			}
			row.Leads += src.Leads
			row.Sold += src.Sold
			row.SpendCents += src.SpendCents
			row.SoldPremiumCents += src.SoldPremiumCents
		}

		out := []bucketRoiRow{}
		for _, id := range order {
			row := byBucket[id]
			row.Spend = ingest.FormatCents(row.SpendCents)
			row.SoldPremium = ingest.FormatCents(row.SoldPremiumCents)
			if row.SpendCents > 0 {
				row.ROI = float64(row.SoldPremiumCents-row.SpendCents) / float64(row.SpendCents)
			}
			out = append(out, *row)
		}
		api.RespondWithPayload(w, true, "", out)
	}
}
