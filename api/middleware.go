package api

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/internal/validation"
)

type contextKey string

const (
	AgencyIDKey   contextKey = "agencyID"
	AgencyNameKey contextKey = "agencyName"
	UserIDKey     contextKey = "userID"
	StaffUserKey  contextKey = "staffUser"
)

// GetAgencyIDFromCtx returns the validated agency scope for the request.
func GetAgencyIDFromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(AgencyIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserIDFromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func IsStaffFromCtx(ctx context.Context) bool {
	if staff, ok := ctx.Value(StaffUserKey).(bool); ok {
		return staff
	}
	return false
}

// AgencyMiddleware validates the caller's session and resolves their agency
// scope into the request context. Every funnel/dash/master query filters by
// that agency id; staff users may name a target agency via X-Agency-ID.
func AgencyMiddleware(pool *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := validation.ExtractUserID(r)
			if err != nil {
				RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
				return
			}
			if validation.ValidateSession(userID) == nil {
				RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
				return
			}

			scope, err := validation.ResolveAgencyScope(r.Context(), pool, userID)
			if err != nil {
				RespondWithError(w, http.StatusForbidden, constants.ErrNoAgency)
				return
			}

			agencyID := scope.AgencyID
			if scope.StaffUser {
				if override := r.Header.Get("X-Agency-ID"); override != "" {
					agencyID = override
				}
			}
			if agencyID == "" {
				RespondWithError(w, http.StatusForbidden, constants.ErrAgencyNotFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, scope.UserID)
			ctx = context.WithValue(ctx, AgencyIDKey, agencyID)
			ctx = context.WithValue(ctx, AgencyNameKey, scope.AgencyName)
			ctx = context.WithValue(ctx, StaffUserKey, scope.StaffUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
