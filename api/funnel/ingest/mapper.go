package ingest

import (
	"sort"
	"strings"
)

// TargetField is a canonical import field the operator can map a source
// column onto.
type TargetField string

const (
	FieldFirstName  TargetField = "first_name"
	FieldLastName   TargetField = "last_name"
	FieldZip        TargetField = "zip"
	FieldPhone      TargetField = "phone"
	FieldEmail      TargetField = "email"
	FieldProduct    TargetField = "product"
	FieldPremium    TargetField = "premium"
	FieldDate       TargetField = "date"
	FieldProducer   TargetField = "producer"
	FieldLeadSource TargetField = "lead_source"
	FieldItems      TargetField = "items"
	FieldPolicyRef  TargetField = "policy_ref"
)

// fieldSynonyms drives the heuristic header matching. Matching is
// case-insensitive substring containment; an exact header match outranks a
// substring hit.
var fieldSynonyms = map[TargetField][]string{
	FieldFirstName:  {"first name", "first", "fname", "firstname", "given"},
	FieldLastName:   {"last name", "last", "lname", "lastname", "surname", "family"},
	FieldZip:        {"zip", "postal", "zipcode", "zip code"},
	FieldPhone:      {"phone", "tel", "mobile", "cell", "contact number"},
	FieldEmail:      {"email", "e-mail", "mail"},
	FieldProduct:    {"product", "line", "policy type", "lob", "coverage"},
	FieldPremium:    {"premium", "amount", "price", "annual premium"},
	FieldDate:       {"date", "quoted on", "sold on", "effective"},
	FieldProducer:   {"producer", "agent", "csr", "team member", "sold by", "quoted by"},
	FieldLeadSource: {"source", "lead source", "channel", "campaign", "vendor"},
	FieldItems:      {"items", "policies", "count", "lines quoted"},
	FieldPolicyRef:  {"policy number", "policy #", "policy id", "reference", "ref"},
}

type candidate struct {
	header string
	score  int
	pos    int
}

// SuggestMapping proposes, for every canonical field, the source headers that
// look like a match, best first. More than one phone column may be suggested
// at once. The result is advisory: the operator can override every field
// before committing, and no field is required here — required-field
// enforcement happens in the normalizer.
func SuggestMapping(headers []string) map[TargetField][]string {
	out := make(map[TargetField][]string, len(fieldSynonyms))
	for field, syns := range fieldSynonyms {
		var cands []candidate
		for pos, h := range headers {
			lh := strings.ToLower(strings.TrimSpace(h))
			if lh == "" {
				continue
			}
			best := 0
			for _, syn := range syns {
				if lh == syn {
					best = 2
					break
				}
				if strings.Contains(lh, syn) && best < 1 {
					best = 1
				}
			}
			if best > 0 {
				cands = append(cands, candidate{header: h, score: best, pos: pos})
			}
		}
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].score != cands[j].score {
				return cands[i].score > cands[j].score
			}
			return cands[i].pos < cands[j].pos
		})
		names := make([]string, 0, len(cands))
		for _, c := range cands {
			names = append(names, c.header)
		}
		if len(names) > 0 {
			out[field] = names
		}
	}
	return out
}
