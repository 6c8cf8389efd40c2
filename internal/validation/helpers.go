package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api/auth"
)

// ExtractUserID parses the request body ONCE and extracts user_id.
// This replaces repeated body parsing in every middleware.
func ExtractUserID(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	defer r.Body.Close()

	// Try JSON first (we already have bytes)
	var reqMap map[string]interface{}
	if err := json.Unmarshal(body, &reqMap); err == nil {
		if userID, ok := reqMap["user_id"].(string); ok && userID != "" {
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			return userID, nil
		}
	}

	// Restore body so form parsing can read it
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	ct := r.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(ct), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	} else {
		if err := r.ParseForm(); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	}

	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return "", fmt.Errorf("user_id not found in request")
}

// ValidateSession checks if the user has an active session (in-memory check, no DB)
// Returns the session object or nil if not found
func ValidateSession(userID string) *auth.UserSession {
	sessions := auth.GetActiveSessions()
	for _, s := range sessions {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

// AgencyScope is the validated request scope every funnel query is bound to.
type AgencyScope struct {
	UserID     string
	AgencyID   string
	AgencyName string
	StaffUser  bool
}

// ResolveAgencyScope validates the user and fetches their agency in one
// query. Staff users carry no agency of their own and must name one
// explicitly per request.
func ResolveAgencyScope(ctx context.Context, db *pgxpool.Pool, userID string) (*AgencyScope, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT u.id, COALESCE(u.agency_id::text, ''), COALESCE(a.name, ''),
		       COALESCE(u.is_staff, false)
		FROM users u
		LEFT JOIN agencies a ON a.agency_id = u.agency_id
		WHERE u.id = $1
		LIMIT 1
	`

	var scope AgencyScope
	err := db.QueryRow(ctx, query, userID).Scan(
		&scope.UserID, &scope.AgencyID, &scope.AgencyName, &scope.StaffUser,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}
	if scope.AgencyID == "" && !scope.StaffUser {
		return nil, fmt.Errorf("user %s has no agency assigned", userID)
	}
	return &scope, nil
}
