package training

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
)

type contentRequest struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	VideoURL string `json:"video_url"`
}

type commentRequest struct {
	UserID          string `json:"user_id"`
	ItemID          string `json:"item_id"`
	Body            string `json:"body"`
	ParentCommentID string `json:"parent_comment_id"`
}

// CreateContentItem publishes a training item. Content is managed by staff,
// so non-staff callers are rejected.
func CreateContentItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !api.IsStaffFromCtx(ctx) {
			api.RespondWithError(w, http.StatusForbidden, "Only staff can publish training content")
			return
		}

		var req contentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if req.Title == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing title")
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO training_items (title, body, category, video_url, created_by)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
			RETURNING item_id
		`, req.Title, req.Body, req.Category, req.VideoURL, api.GetUserIDFromCtx(ctx)).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", map[string]string{"item_id": id})
	}
}

// GetContentItems lists training items, newest first, optionally filtered by
// category.
func GetContentItems(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req struct {
			UserID   string `json:"user_id"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}

		rows, err := pool.Query(ctx, `
			SELECT i.item_id, i.title, i.body, COALESCE(i.category, ''),
			       COALESCE(i.video_url, ''), i.created_at,
			       (SELECT COUNT(*) FROM training_comments c WHERE c.item_id = i.item_id)
			FROM training_items i
			WHERE $1 = '' OR i.category = $1
			ORDER BY i.created_at DESC
		`, req.Category)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		out := []map[string]interface{}{}
		for rows.Next() {
			var id, title, body, category, videoURL string
			var createdAt interface{}
			var comments int64
			if err := rows.Scan(&id, &title, &body, &category, &videoURL, &createdAt, &comments); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"item_id":       id,
				"title":         title,
				"body":          body,
				"category":      category,
				"video_url":     videoURL,
				"created_at":    createdAt,
				"comment_count": comments,
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

// CreateComment adds a comment to a training item's discussion thread.
// parent_comment_id nests it under an existing comment.
func CreateComment(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if req.ItemID == "" || req.Body == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing item_id or body")
			return
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO training_comments (item_id, agency_id, author_id, body, parent_comment_id)
			VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
			RETURNING comment_id
		`, req.ItemID, api.GetAgencyIDFromCtx(ctx), api.GetUserIDFromCtx(ctx),
			req.Body, req.ParentCommentID).Scan(&id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", map[string]string{"comment_id": id})
	}
}

// GetComments lists one item's thread in chronological order; replies carry
// parent_comment_id so the caller can indent them.
func GetComments(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req struct {
			UserID string `json:"user_id"`
			ItemID string `json:"item_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if req.ItemID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing item_id")
			return
		}

		rows, err := pool.Query(ctx, `
			SELECT c.comment_id, COALESCE(c.parent_comment_id::text, ''),
			       c.body, c.created_at, COALESCE(u.display_name, '')
			FROM training_comments c
			LEFT JOIN users u ON u.user_id = c.author_id
			WHERE c.item_id = $1
			ORDER BY c.created_at
		`, req.ItemID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		out := []map[string]interface{}{}
		for rows.Next() {
			var id, parentID, body, author string
			var createdAt interface{}
			if err := rows.Scan(&id, &parentID, &body, &createdAt, &author); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"comment_id":        id,
				"parent_comment_id": parentID,
				"body":              body,
				"created_at":        createdAt,
				"author":            author,
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

func StartTrainingService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	agency := api.AgencyMiddleware(pool)

	mux.HandleFunc("/training/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Training Service"))
	})

	mux.Handle("/training/items/create", agency(CreateContentItem(pool)))
	mux.Handle("/training/items", agency(GetContentItems(pool)))
	mux.Handle("/training/comments/create", agency(CreateComment(pool)))
	mux.Handle("/training/comments", agency(GetComments(pool)))

	log.Println("Training Service started on :6243")
	err := http.ListenAndServe(":6243", mux)
	if err != nil {
		log.Fatalf("Training Service failed: %v", err)
	}
}
