package funnelboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/ingest"
)

type summaryRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// parseRange reads optional from/to bounds. A blank bound stays open.
func parseRange(from, to string) (*time.Time, *time.Time) {
	var lo, hi *time.Time
	if t := ingest.ParseDate(from); t != nil {
		lo = t
	}
	if t := ingest.ParseDate(to); t != nil {
		end := t.AddDate(0, 0, 1)
		hi = &end
	}
	return lo, hi
}

// GetFunnelSummary returns lead/quoted/sold counts and the close rate for the
// caller's agency. Sold households count as quoted too, since they passed
// through that stage.
func GetFunnelSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		lo, hi := parseRange(req.From, req.To)

		var leads, quoted, sold, needsAttention int64
		err := pool.QueryRow(ctx, `
			SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE status IN ('quoted', 'sold')),
				COUNT(*) FILTER (WHERE status = 'sold'),
				COUNT(*) FILTER (WHERE needs_attention)
			FROM households
			WHERE agency_id = $1
			  AND ($2::timestamptz IS NULL OR created_at >= $2)
			  AND ($3::timestamptz IS NULL OR created_at < $3)
		`, agencyID, lo, hi).Scan(&leads, &quoted, &sold, &needsAttention)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var soldPremiumCents int64
		err = pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(premium_cents), 0) FROM sales
			WHERE agency_id = $1
			  AND ($2::timestamptz IS NULL OR sale_date >= $2)
			  AND ($3::timestamptz IS NULL OR sale_date < $3)
		`, agencyID, lo, hi).Scan(&soldPremiumCents)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"leads":              leads,
			"quoted":             quoted,
			"sold":               sold,
			"needs_attention":    needsAttention,
			"close_rate":         closeRate(sold, quoted),
			"sold_premium_cents": soldPremiumCents,
			"sold_premium":       ingest.FormatCents(soldPremiumCents),
		})
	}
}

// closeRate is sold/quoted as a fraction in [0,1], 0 when nothing was quoted.
func closeRate(sold, quoted int64) float64 {
	if quoted == 0 {
		return 0
	}
	return float64(sold) / float64(quoted)
}
