package allMaster

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
)

type TeamMemberRequest struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	ProducerCode string `json:"producer_code"`
	Email        string `json:"email"`
	ActiveStatus string `json:"active_status"`
}

func CreateTeamMember(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req TeamMemberRequest
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
			api.RespondWithError(w, http.StatusBadRequest, "Missing team member name")
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO team_members (agency_id, name, producer_code, email, active_status, created_by)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), COALESCE(NULLIF($5, ''), 'active'), $6)
			RETURNING team_member_id
		`, agencyID, req.Name, req.ProducerCode, req.Email, req.ActiveStatus, createdBy).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"team_member_id": id,
		})
	}
}

func UpdateTeamMember(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		var req struct {
			TeamMemberRequest
			TeamMemberID string `json:"team_member_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamMemberID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		updatedBy := sessionEmail(req.UserID)
		if updatedBy == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		tag, err := pool.Exec(ctx, `
			UPDATE team_members SET
				name = COALESCE(NULLIF($1, ''), name),
				producer_code = COALESCE(NULLIF($2, ''), producer_code),
				email = COALESCE(NULLIF($3, ''), email),
				active_status = COALESCE(NULLIF($4, ''), active_status),
				updated_by = $5,
				updated_at = now()
			WHERE team_member_id = $6 AND agency_id = $7
		`, req.Name, req.ProducerCode, req.Email, req.ActiveStatus, updatedBy,
			req.TeamMemberID, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrTeamMemberNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func GetTeamMembers(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		rows, err := pool.Query(ctx, `
			SELECT team_member_id, name, COALESCE(producer_code, ''), COALESCE(email, ''), active_status
			FROM team_members
			WHERE agency_id = $1
			ORDER BY name
		`, agencyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type item struct {
			ID           string `json:"team_member_id"`
			Name         string `json:"name"`
			ProducerCode string `json:"producer_code"`
			Email        string `json:"email"`
			ActiveStatus string `json:"active_status"`
		}
		results := make([]item, 0)
		for rows.Next() {
			var it item
			if err := rows.Scan(&it.ID, &it.Name, &it.ProducerCode, &it.Email, &it.ActiveStatus); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
