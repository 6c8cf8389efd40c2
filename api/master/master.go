package master

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/api"
	allMaster "AgencyFunnelCRM/api/master/allMasters"
)

func StartMasterService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	agency := api.AgencyMiddleware(pool)

	mux.HandleFunc("/master/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Master Service"))
	})

	mux.Handle("/master/lead-sources/create", agency(allMaster.CreateLeadSource(pool)))
	mux.Handle("/master/lead-sources/update", agency(allMaster.UpdateLeadSource(pool)))
	mux.Handle("/master/lead-sources", agency(allMaster.GetLeadSources(pool)))

	mux.Handle("/master/buckets/create", agency(allMaster.CreateMarketingBucket(pool)))
	mux.Handle("/master/buckets/update", agency(allMaster.UpdateMarketingBucket(pool)))
	mux.Handle("/master/buckets", agency(allMaster.GetMarketingBuckets(pool)))

	mux.Handle("/master/team-members/create", agency(allMaster.CreateTeamMember(pool)))
	mux.Handle("/master/team-members/update", agency(allMaster.UpdateTeamMember(pool)))
	mux.Handle("/master/team-members", agency(allMaster.GetTeamMembers(pool)))

	mux.Handle("/master/objections/create", agency(allMaster.CreateObjection(pool)))
	mux.Handle("/master/objections", agency(allMaster.GetObjections(pool)))

	log.Println("Master Service started on :4243")
	err := http.ListenAndServe(":4243", mux)
	if err != nil {
		log.Fatalf("Master Service failed: %v", err)
	}
}
