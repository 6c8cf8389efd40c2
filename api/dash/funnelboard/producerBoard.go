package funnelboard

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/ingest"
)

type producerRow struct {
	TeamMemberID     string  `json:"team_member_id"`
	Name             string  `json:"name"`
	ProducerCode     string  `json:"producer_code,omitempty"`
	Quotes           int64   `json:"quotes"`
	Sales            int64   `json:"sales"`
	CloseRate        float64 `json:"close_rate"`
	QuotedHouseholds int64   `json:"quoted_households"`
	SoldHouseholds   int64   `json:"sold_households"`
	SoldPremiumCents int64   `json:"sold_premium_cents"`
	SoldPremium      string  `json:"sold_premium"`
}

// GetProducerBoard ranks team members by sold premium, with quote and sale
// volume and a household-level close rate per producer.
func GetProducerBoard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		lo, hi := parseRange(req.From, req.To)

		rows, err := pool.Query(ctx, `
			SELECT
				tm.team_member_id,
				tm.name,
				COALESCE(tm.producer_code, ''),
				(SELECT COUNT(*) FROM quotes q
					WHERE q.producer_id = tm.team_member_id AND q.agency_id = $1
					  AND ($2::timestamptz IS NULL OR q.quote_date >= $2)
					  AND ($3::timestamptz IS NULL OR q.quote_date < $3)),
				(SELECT COUNT(*) FROM sales s
					WHERE s.producer_id = tm.team_member_id AND s.agency_id = $1
					  AND ($2::timestamptz IS NULL OR s.sale_date >= $2)
					  AND ($3::timestamptz IS NULL OR s.sale_date < $3)),
				(SELECT COUNT(*) FROM households h
					WHERE h.producer_id = tm.team_member_id AND h.agency_id = $1
					  AND h.status IN ('quoted', 'sold')),
				(SELECT COUNT(*) FROM households h
					WHERE h.producer_id = tm.team_member_id AND h.agency_id = $1
					  AND h.status = 'sold'),
				(SELECT COALESCE(SUM(s.premium_cents), 0) FROM sales s
					WHERE s.producer_id = tm.team_member_id AND s.agency_id = $1
					  AND ($2::timestamptz IS NULL OR s.sale_date >= $2)
					  AND ($3::timestamptz IS NULL OR s.sale_date < $3))
			FROM team_members tm
			WHERE tm.agency_id = $1 AND tm.active_status = 'active'
			ORDER BY 8 DESC, tm.name
		`, agencyID, lo, hi)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		out := []producerRow{}
		for rows.Next() {
			var row producerRow
			if err := rows.Scan(
				&row.TeamMemberID, &row.Name, &row.ProducerCode,
				&row.Quotes, &row.Sales, &row.QuotedHouseholds,
				&row.SoldHouseholds, &row.SoldPremiumCents,
			); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			row.CloseRate = closeRate(row.SoldHouseholds, row.QuotedHouseholds)
			row.SoldPremium = ingest.FormatCents(row.SoldPremiumCents)
			out = append(out, row)
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}
