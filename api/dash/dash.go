package dash

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	"AgencyFunnelCRM/api/dash/funnelboard"
)

func StartDashService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	agency := api.AgencyMiddleware(pool)

	mux.HandleFunc("/dash/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Dashboard Service"))
	})

	mux.Handle("/dash/funnel-summary", agency(funnelboard.GetFunnelSummary(pool)))
	mux.Handle("/dash/source-roi", agency(funnelboard.GetSourceRoi(pool)))
	mux.Handle("/dash/bucket-roi", agency(funnelboard.GetBucketRoi(pool)))
	mux.Handle("/dash/producer-board", agency(funnelboard.GetProducerBoard(pool)))

	log.Println("Dashboard Service started on :5243")
	err := http.ListenAndServe(":5243", mux)
	if err != nil {
		log.Fatalf("Dashboard Service failed: %v", err)
	}
}
