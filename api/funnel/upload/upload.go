package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/api/funnel/household"
	"AgencyFunnelCRM/api/funnel/ingest"
	"AgencyFunnelCRM/internal/staffgate"
	"AgencyFunnelCRM/internal/uploads"
)

func importKind(s string) (ingest.ImportKind, bool) {
	switch ingest.ImportKind(s) {
	case ingest.ImportLeads, ingest.ImportQuotes, ingest.ImportSales:
		return ingest.ImportKind(s), true
	}
	return "", false
}

func readUploadFile(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("failed to parse multipart form")
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, "", fmt.Errorf(constants.ErrNoFilesUploaded)
	}
	fh := files[0]
	if !ingest.SupportedExt(fh.Filename) {
		return nil, "", fmt.Errorf(constants.ErrUnsupportedFile)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %s", fh.Filename)
	}
	return data, fh.Filename, nil
}

// Preview parses the uploaded file and returns its headers, a sample of rows
// and a heuristic column-mapping suggestion. Nothing is persisted; the
// operator can override every suggested field before committing.
func Preview(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, filename, err := readUploadFile(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		parsed, err := ingest.Parse(data, filename, constants.UploadSampleRows)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"headers":     parsed.Headers,
			"sample_rows": parsed.SampleRows,
			"total_rows":  parsed.TotalRows,
			"suggestion":  ingest.SuggestMapping(parsed.Headers),
		})
	}
}

// Commit schedules the background import and returns its upload id
// immediately. The batch keeps running after the client navigates away; the
// status endpoint reports progress and the final summary.
func Commit(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agencyID := api.GetAgencyIDFromCtx(ctx)

		data, filename, err := readUploadFile(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind, ok := importKind(r.FormValue("kind"))
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "kind must be one of leads, quotes, sales")
			return
		}
		var mapping ingest.Mapping
		if err := json.Unmarshal([]byte(r.FormValue("mapping")), &mapping); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMappingIncomplete)
			return
		}

		store := pickStore(r, pool)
		asOf := time.Now().UTC()

		uploadID := uploads.Schedule(uploads.Job{
			Kind:    string(kind),
			Parse:   parsePhase(data, filename, mapping, kind, asOf),
			Process: processPhase(store, agencyID, kind),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"upload_id": uploadID,
		})
	}
}

// pickStore selects the persistence transport: staff identity contexts go
// through the privileged function endpoints, everyone else writes directly.
func pickStore(r *http.Request, pool *pgxpool.Pool) household.Store {
	if api.IsStaffFromCtx(r.Context()) {
		if client := staffgate.FromEnv(); client != nil {
			return household.NewStaffStore(client)
		}
	}
	return household.NewPgxStore(pool)
}

type parsedBatch struct {
	records   []ingest.Record
	rowErrors []ingest.RowError
	processed int
}

func parsePhase(data []byte, filename string, mapping ingest.Mapping, kind ingest.ImportKind, asOf time.Time) func(ctx context.Context) (interface{}, error) {
	return func(ctx context.Context) (interface{}, error) {
		parsed, err := ingest.Parse(data, filename, 0)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, rowErrs := ingest.Normalize(parsed.AllRows, mapping, kind, asOf, ingest.PhoneMatchDigits)
		return &parsedBatch{
			records:   records,
			rowErrors: rowErrs,
			processed: parsed.TotalRows,
		}, nil
	}
}

func processPhase(store household.Store, agencyID string, kind ingest.ImportKind) func(ctx context.Context, parsed interface{}) (*uploads.Result, error) {
	return func(ctx context.Context, parsed interface{}) (*uploads.Result, error) {
		batch := parsed.(*parsedBatch)
		rec := household.NewReconciler(store, agencyID)

		res := &uploads.Result{Processed: batch.processed}
		for _, e := range batch.rowErrors {
			res.Errors = append(res.Errors, uploads.RowError{Row: e.Row, Message: e.Message})
		}

		unmatched := make(map[string]bool)
		for _, record := range batch.records {
			rowRes, err := rec.Reconcile(ctx, record, kind)
			if err != nil {
				// Row-level persistence failures never stop the batch.
				res.Errors = append(res.Errors, uploads.RowError{Row: record.Row, Message: err.Error()})
				continue
			}
			switch rowRes.Outcome {
			case household.OutcomeCreated:
				res.Created++
			case household.OutcomeUpdated:
				res.Updated++
			}
			if rowRes.UnmatchedProducer != "" && !unmatched[rowRes.UnmatchedProducer] {
				unmatched[rowRes.UnmatchedProducer] = true
				res.UnmatchedProducers = append(res.UnmatchedProducers, rowRes.UnmatchedProducer)
			}
			if rowRes.NeedsAttention {
				res.NeedsAttention++
			}
		}
		res.Skipped = len(res.Errors)
		if len(res.UnmatchedProducers) > 0 {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%d producer name(s) could not be matched to a team member", len(res.UnmatchedProducers)))
		}
		return res, nil
	}
}

// Status reports the state of a background upload, including the final
// summary once it completes. A parse timeout is reported distinctly so the
// operator knows to retry with a smaller file rather than fix data.
func Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		task, ok := uploads.Get(id)
		if !ok {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrUploadNotFound)
			return
		}
		state, result, err := task.Status()

		resp := map[string]interface{}{
			"success":   true,
			"upload_id": task.ID,
			"kind":      task.Kind,
			"state":     state,
		}
		if result != nil {
			resp["result"] = result
		}
		if err != nil {
			resp["error"] = err.Error()
			resp["timeout"] = err == uploads.ErrParseTimeout
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// Dispose drops a finished upload from the registry.
func Dispose() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			UploadID string `json:"upload_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UploadID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if !uploads.Dispose(req.UploadID) {
			api.RespondWithError(w, http.StatusConflict, "upload is still running or unknown")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
