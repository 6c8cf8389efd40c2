package allMaster

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/auth"
	"AgencyFunnelCRM/api/constants"
)

// CostType is how a lead source's acquisition cost accrues.
// Valid values: per_lead, per_transfer, monthly_fixed, per_mailer.
var validCostTypes = map[string]bool{
	"per_lead":      true,
	"per_transfer":  true,
	"monthly_fixed": true,
	"per_mailer":    true,
}

type LeadSourceRequest struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	BucketID      string `json:"bucket_id"`
	CostType      string `json:"cost_type"`
	CostCents     int64  `json:"cost_cents"`
	SelfGenerated bool   `json:"self_generated"`
	ActiveStatus  string `json:"active_status"`
}

func sessionEmail(userID string) string {
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == userID {
			return s.Email
		}
	}
	return ""
}

func CreateLeadSource(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req LeadSourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		createdBy := sessionEmail(req.UserID)
		if createdBy == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing lead source name")
			return
		}
		// Self-generated sources carry no acquisition cost.
		if req.SelfGenerated {
			req.CostCents = 0
		} else if !validCostTypes[req.CostType] {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid cost_type")
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO lead_sources (
				agency_id, name, bucket_id, cost_type, cost_cents, self_generated,
				active_status, created_by
			) VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, ''), $5, $6,
			          COALESCE(NULLIF($7, ''), 'active'), $8)
			RETURNING lead_source_id
		`, agencyID, req.Name, req.BucketID, req.CostType, req.CostCents,
			req.SelfGenerated, req.ActiveStatus, createdBy).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"lead_source_id": id,
		})
	}
}

func UpdateLeadSource(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req struct {
			LeadSourceRequest
			LeadSourceID string `json:"lead_source_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LeadSourceID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		updatedBy := sessionEmail(req.UserID)
		if updatedBy == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if req.SelfGenerated {
			req.CostCents = 0
		}

		tag, err := pool.Exec(ctx, `
			UPDATE lead_sources SET
				name = COALESCE(NULLIF($1, ''), name),
				bucket_id = COALESCE(NULLIF($2, '')::uuid, bucket_id),
				cost_type = COALESCE(NULLIF($3, ''), cost_type),
				cost_cents = $4,
				self_generated = $5,
				active_status = COALESCE(NULLIF($6, ''), active_status),
				updated_by = $7,
				updated_at = now()
			WHERE lead_source_id = $8 AND agency_id = $9
		`, req.Name, req.BucketID, req.CostType, req.CostCents, req.SelfGenerated,
			req.ActiveStatus, updatedBy, req.LeadSourceID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLeadSourceNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// GetLeadSources returns all lead sources for the agency with their bucket
// names joined.
func GetLeadSources(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		rows, err := pool.Query(ctx, `
			SELECT ls.lead_source_id, ls.name, COALESCE(ls.bucket_id::text, ''),
			       COALESCE(mb.name, ''), COALESCE(ls.cost_type, ''), ls.cost_cents,
			       ls.self_generated, ls.active_status
			FROM lead_sources ls
			LEFT JOIN marketing_buckets mb ON mb.bucket_id = ls.bucket_id
			WHERE ls.agency_id = $1
			ORDER BY ls.name
		`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type item struct {
			ID            string `json:"lead_source_id"`
			Name          string `json:"name"`
			BucketID      string `json:"bucket_id"`
			BucketName    string `json:"bucket_name"`
			CostType      string `json:"cost_type"`
			CostCents     int64  `json:"cost_cents"`
			SelfGenerated bool   `json:"self_generated"`
			ActiveStatus  string `json:"active_status"`
		}
		results := make([]item, 0)
		for rows.Next() {
			var it item
			if err := rows.Scan(&it.ID, &it.Name, &it.BucketID, &it.BucketName,
				&it.CostType, &it.CostCents, &it.SelfGenerated, &it.ActiveStatus); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
