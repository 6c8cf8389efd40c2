package household

import "time"

// Status is the household lifecycle stage. It only escalates forward
// (lead -> quoted -> sold), never regresses.
type Status string

const (
	StatusLead   Status = "lead"
	StatusQuoted Status = "quoted"
	StatusSold   Status = "sold"
)

var statusRank = map[Status]int{
	StatusLead:   1,
	StatusQuoted: 2,
	StatusSold:   3,
}

// Household is the unit of CRM tracking: one family/customer identified by
// name+ZIP, accumulating quotes and sales over time. At most one household
// exists per (agency, household_key).
type Household struct {
	ID             string     `json:"id"`
	AgencyID       string     `json:"agency_id"`
	HouseholdKey   string     `json:"household_key"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Zip            string     `json:"zip"`
	Phones         []string   `json:"phones"`
	Email          string     `json:"email"`
	Status         Status     `json:"status"`
	NeedsAttention bool       `json:"needs_attention"`
	LeadSourceID   string     `json:"lead_source_id"`
	ProducerID     string     `json:"producer_id"`
	ObjectionID    string     `json:"objection_id"`
	FirstQuoteDate *time.Time `json:"first_quote_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Quote is one product-level quote line belonging to a household.
type Quote struct {
	ID           string     `json:"id"`
	HouseholdID  string     `json:"household_id"`
	AgencyID     string     `json:"agency_id"`
	Product      string     `json:"product"`
	PremiumCents int64      `json:"premium_cents"`
	QuoteDate    *time.Time `json:"quote_date"`
	Items        int        `json:"items"`
	ProducerID   string     `json:"producer_id"`
	Provenance   string     `json:"provenance"` // "manual" or "import"
}

// Sale mirrors Quote for sold business, optionally linking back to the quote
// it converted and an external policy reference.
type Sale struct {
	ID            string     `json:"id"`
	HouseholdID   string     `json:"household_id"`
	AgencyID      string     `json:"agency_id"`
	Product       string     `json:"product"`
	PremiumCents  int64      `json:"premium_cents"`
	SaleDate      *time.Time `json:"sale_date"`
	Items         int        `json:"items"`
	ProducerID    string     `json:"producer_id"`
	SourceQuoteID string     `json:"source_quote_id"`
	PolicyRef     string     `json:"policy_ref"`
	Provenance    string     `json:"provenance"`
}

const (
	ProvenanceManual = "manual"
	ProvenanceImport = "import"
)
