package household

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/ingest"
	"AgencyFunnelCRM/api/utils"
)

// formatPremium keeps the table renderer on the same money convention as the
// upload summary.
func formatPremium(cents int64) string {
	return ingest.FormatCents(cents)
}

// sortColumns whitelists the sortable list columns against the SQL they map to.
var sortColumns = map[string]string{
	"name":        "h.last_name, h.first_name",
	"zip":         "h.zip",
	"premium":     "premium_cents",
	"status":      "h.status",
	"lead_source": "lead_source",
	"producer":    "producer",
	"updated":     "h.updated_at",
}

type listRow struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Zip            string   `json:"zip"`
	Products       []string `json:"products"`
	PremiumCents   int64    `json:"premium_cents"`
	Premium        string   `json:"premium"`
	LeadSource     string   `json:"lead_source"`
	Objection      string   `json:"objection"`
	Producer       string   `json:"producer"`
	Status         string   `json:"status"`
	NeedsAttention bool     `json:"needs_attention"`
}

func fetchRows(ctx context.Context, pool *pgxpool.Pool, agencyID, sortKey, dir string, limit, offset int) ([]listRow, error) {
	orderBy, ok := sortColumns[sortKey]
	if !ok {
		orderBy = sortColumns["updated"]
	}
	if dir != "asc" {
		dir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT h.household_id,
		       h.first_name || ' ' || h.last_name AS name,
		       h.zip,
		       COALESCE(array_agg(DISTINCT q.product) FILTER (WHERE q.product IS NOT NULL), '{}') AS products,
		       COALESCE(SUM(q.premium_cents), 0) AS premium_cents,
		       COALESCE(ls.name, '') AS lead_source,
		       COALESCE(o.reason, '') AS objection,
		       COALESCE(tm.name, '') AS producer,
		       h.status,
		       h.needs_attention
		FROM households h
		LEFT JOIN quotes q ON q.household_id = h.household_id
		LEFT JOIN lead_sources ls ON ls.lead_source_id = h.lead_source_id
		LEFT JOIN objections o ON o.objection_id = h.objection_id
		LEFT JOIN team_members tm ON tm.team_member_id = h.producer_id
		WHERE h.agency_id = $1
		GROUP BY h.household_id, ls.name, o.reason, tm.name
		ORDER BY %s %s
		LIMIT $2 OFFSET $3
	`, orderBy, dir)

	rows, err := pool.Query(ctx, query, agencyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]listRow, 0)
	for rows.Next() {
		var it listRow
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Zip, &it.Products, &it.PremiumCents,
			&it.LeadSource, &it.Objection, &it.Producer, &it.Status, &it.NeedsAttention,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListHouseholds returns the paginated, sorted household table with product,
// premium, source and producer joins.
func ListHouseholds(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		params, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		total, err := utils.CountTotal(ctx, pool,
			`SELECT COUNT(*) FROM households WHERE agency_id = $1`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		params.SetPaginationStats(total)

		items, err := fetchRows(ctx, pool, agencyID,
			r.URL.Query().Get("sort"), r.URL.Query().Get("dir"),
			params.Limit, params.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for i := range items {
			items[i].Premium = formatPremium(items[i].PremiumCents)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"rows":       items,
			"pagination": params,
		})
	}
}

// ExportHouseholds streams the currently-displayed page as CSV with the fixed
// column order Name, ZIP, Products, Premium, Lead Source, Objection,
// Producer, Status.
func ExportHouseholds(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		params, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := fetchRows(ctx, pool, agencyID,
			r.URL.Query().Get("sort"), r.URL.Query().Get("dir"),
			params.Limit, params.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		export := make([]ExportRow, 0, len(items))
		for _, it := range items {
			export = append(export, ExportRow{
				Name:         it.Name,
				Zip:          it.Zip,
				Products:     it.Products,
				PremiumCents: it.PremiumCents,
				LeadSource:   it.LeadSource,
				Objection:    it.Objection,
				Producer:     it.Producer,
				Status:       it.Status,
			})
		}

		filename := fmt.Sprintf("households_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := WriteCSV(w, export); err != nil {
			api.LogError("household export failed: %v", err)
		}
	}
}

// UpdateAttribution assigns a lead source and/or objection reason to a
// household. Assigning a lead source clears the needs_attention flag.
func UpdateAttribution(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req struct {
			UserID       string `json:"user_id"`
			HouseholdID  string `json:"household_id"`
			LeadSourceID string `json:"lead_source_id"`
			ObjectionID  string `json:"objection_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HouseholdID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}

		tag, err := pool.Exec(ctx, `
			UPDATE households SET
				lead_source_id = COALESCE(NULLIF($1, '')::uuid, lead_source_id),
				objection_id = COALESCE(NULLIF($2, '')::uuid, objection_id),
				needs_attention = CASE
					WHEN NULLIF($1, '') IS NOT NULL OR lead_source_id IS NOT NULL THEN false
					ELSE needs_attention
				END,
				updated_at = now()
			WHERE household_id = $3 AND agency_id = $4
		`, req.LeadSourceID, req.ObjectionID, req.HouseholdID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrHouseholdNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// GetNeedsAttention lists households whose lead source is unknown and must be
// assigned before ROI reporting is accurate.
func GetNeedsAttention(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		rows, err := pool.Query(ctx, `
			SELECT household_id, first_name || ' ' || last_name, zip, status, updated_at
			FROM households
			WHERE agency_id = $1 AND needs_attention = true
			ORDER BY updated_at DESC
		`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type item struct {
			ID        string    `json:"id"`
			Name      string    `json:"name"`
			Zip       string    `json:"zip"`
			Status    string    `json:"status"`
			UpdatedAt time.Time `json:"updated_at"`
		}
		results := make([]item, 0)
		for rows.Next() {
			var it item
			if err := rows.Scan(&it.ID, &it.Name, &it.Zip, &it.Status, &it.UpdatedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
