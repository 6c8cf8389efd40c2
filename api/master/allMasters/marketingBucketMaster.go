package allMaster

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
)

type MarketingBucketRequest struct {
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	MonthlySpendCents int64  `json:"monthly_spend_cents"`
	ActiveStatus      string `json:"active_status"`
}

func CreateMarketingBucket(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req MarketingBucketRequest
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
			api.RespondWithError(w, http.StatusBadRequest, "Missing bucket name")
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO marketing_buckets (agency_id, name, monthly_spend_cents, active_status, created_by)
			VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'active'), $5)
			RETURNING bucket_id
		`, agencyID, req.Name, req.MonthlySpendCents, req.ActiveStatus, createdBy).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"bucket_id": id,
		})
	}
}

func UpdateMarketingBucket(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req struct {
			MarketingBucketRequest
			BucketID string `json:"bucket_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BucketID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		updatedBy := sessionEmail(req.UserID)
		if updatedBy == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		tag, err := pool.Exec(ctx, `
			UPDATE marketing_buckets SET
				name = COALESCE(NULLIF($1, ''), name),
				monthly_spend_cents = $2,
				active_status = COALESCE(NULLIF($3, ''), active_status),
				updated_by = $4,
				updated_at = now()
			WHERE bucket_id = $5 AND agency_id = $6
		`, req.Name, req.MonthlySpendCents, req.ActiveStatus, updatedBy, req.BucketID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrBucketNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func GetMarketingBuckets(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		rows, err := pool.Query(ctx, `
			SELECT bucket_id, name, monthly_spend_cents, active_status
			FROM marketing_buckets
			WHERE agency_id = $1
			ORDER BY name
		`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type item struct {
			ID                string `json:"bucket_id"`
			Name              string `json:"name"`
			MonthlySpendCents int64  `json:"monthly_spend_cents"`
			ActiveStatus      string `json:"active_status"`
		}
		results := make([]item, 0)
		for rows.Next() {
			var it item
			if err := rows.Scan(&it.ID, &it.Name, &it.MonthlySpendCents, &it.ActiveStatus); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
