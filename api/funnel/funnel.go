package funnel

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/funnel/entry"
	"AgencyFunnelCRM/api/funnel/household"
	"AgencyFunnelCRM/api/funnel/upload"
)

func StartFunnelService(pool *pgxpool.Pool) {
	router := mux.NewRouter()
	agency := api.AgencyMiddleware(pool)

	router.HandleFunc("/funnel/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Funnel Service"))
	})

	// Household table
	router.Handle("/funnel/households", agency(household.ListHouseholds(pool))).Methods("POST")
	router.Handle("/funnel/households/export", agency(household.ExportHouseholds(pool))).Methods("POST")
	router.Handle("/funnel/households/attribution", agency(household.UpdateAttribution(pool))).Methods("POST")
	router.Handle("/funnel/households/needs-attention", agency(household.GetNeedsAttention(pool))).Methods("POST")

	// Manual quote/sale entry
	router.Handle("/funnel/quotes", agency(entry.CreateQuote(pool))).Methods("POST")
	router.Handle("/funnel/sales", agency(entry.CreateSale(pool))).Methods("POST")
	router.Handle("/funnel/pipeline", agency(entry.ListByHousehold(pool))).Methods("GET", "POST")

	// Bulk uploads
	router.Handle("/funnel/uploads/preview", agency(upload.Preview(pool))).Methods("POST")
	router.Handle("/funnel/uploads/commit", agency(upload.Commit(pool))).Methods("POST")
	router.Handle("/funnel/uploads/status", upload.Status()).Methods("GET")
	router.Handle("/funnel/uploads/dispose", upload.Dispose()).Methods("POST")

	log.Println("Funnel Service started on :3243")
	err := http.ListenAndServe(":3243", router)
	if err != nil {
		log.Fatalf("Funnel Service failed: %v", err)
	}
}
