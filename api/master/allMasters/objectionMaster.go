package allMaster

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
)

type ObjectionRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

func CreateObjection(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req ObjectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		createdBy := sessionEmail(req.UserID)
		if createdBy == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO objections (agency_id, reason, created_by)
			VALUES ($1, $2, $3)
			RETURNING objection_id
		`, agencyID, req.Reason, createdBy).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      true,
			"objection_id": id,
		})
	}
}

func GetObjections(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		rows, err := pool.Query(ctx, `
			SELECT objection_id, reason FROM objections
			WHERE agency_id = $1
			ORDER BY reason
		`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type item struct {
			ID     string `json:"objection_id"`
			Reason string `json:"reason"`
		}
		results := make([]item, 0)
		for rows.Next() {
			var it item
			if err := rows.Scan(&it.ID, &it.Reason); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
