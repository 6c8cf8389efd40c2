package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"AgencyFunnelCRM/api/constants"
)

// ImportKind selects the upload flavor; it decides required fields and the
// household status a reconciled row lands in.
type ImportKind string

const (
	ImportLeads  ImportKind = "leads"
	ImportQuotes ImportKind = "quotes"
	ImportSales  ImportKind = "sales"
)

// PhoneMatchMode controls phone equality during dedup. Digits mode strips
// punctuation before comparing, so "(555) 123-4567" and "555-123-4567"
// collapse to one entry; Exact mode compares raw strings only.
type PhoneMatchMode int

const (
	PhoneMatchDigits PhoneMatchMode = iota
	PhoneMatchExact
)

// Mapping is the operator-confirmed column mapping. Fields holds
// single-column targets; Phones lists every column to collect phone numbers
// from, in order.
type Mapping struct {
	Fields map[TargetField]string `json:"fields"`
	Phones []string               `json:"phones"`
}

// Record is a validated, closed row type: every later pipeline stage operates
// on this instead of header-keyed string maps.
type Record struct {
	Row          int
	FirstName    string
	LastName     string
	Zip          string
	Phones       []string
	Email        string
	Product      string
	PremiumCents int64
	Date         *time.Time
	Producer     string
	LeadSource   string
	Items        int
	PolicyRef    string
	AsOf         time.Time
}

// RowError tags a validation failure with the offending row's 1-based index.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

var nonDigits = regexp.MustCompile(`\D`)

// Normalize converts raw header-keyed rows into Records using the confirmed
// mapping. Rows missing first name, last name or a valid 5-digit ZIP produce
// exactly one RowError and no Record; the batch continues. Output is
// deterministic for a fixed asOf.
func Normalize(rows []map[string]string, m Mapping, kind ImportKind, asOf time.Time, phoneMode PhoneMatchMode) ([]Record, []RowError) {
	records := make([]Record, 0, len(rows))
	var rowErrs []RowError

	get := func(row map[string]string, f TargetField) string {
		col, ok := m.Fields[f]
		if !ok || col == "" {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	for i, raw := range rows {
		rowNum := i + 1

		first := get(raw, FieldFirstName)
		last := get(raw, FieldLastName)
		if first == "" || last == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: "missing first or last name"})
			continue
		}
		zip, ok := NormalizeZip(get(raw, FieldZip))
		if !ok {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: "missing or invalid 5-digit ZIP"})
			continue
		}

		rec := Record{
			Row:        rowNum,
			FirstName:  first,
			LastName:   last,
			Zip:        zip,
			Email:      get(raw, FieldEmail),
			Product:    get(raw, FieldProduct),
			Producer:   get(raw, FieldProducer),
			LeadSource: get(raw, FieldLeadSource),
			PolicyRef:  get(raw, FieldPolicyRef),
			Items:      1,
			AsOf:       asOf,
		}

		if v := get(raw, FieldItems); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rec.Items = n
			}
		}

		// Premium is mandatory context for quote and sale rows only.
		premRaw := get(raw, FieldPremium)
		if premRaw != "" || kind != ImportLeads {
			cents, err := ParsePremiumCents(premRaw)
			if err != nil {
				if kind != ImportLeads {
					rowErrs = append(rowErrs, RowError{Row: rowNum, Message: err.Error()})
					continue
				}
			} else {
				rec.PremiumCents = cents
			}
		}

		// Unparseable dates are dropped, not fatal: date is optional context.
		if v := get(raw, FieldDate); v != "" {
			rec.Date = ParseDate(v)
		}

		rec.Phones = CollectPhones(raw, m.Phones, phoneMode)
		records = append(records, rec)
	}
	return records, rowErrs
}

// NormalizeZip trims and validates a 5-digit ZIP, accepting ZIP+4 input by
// keeping the leading five digits.
func NormalizeZip(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 5 && s[5] == '-' {
		s = s[:5]
	}
	if len(s) != 5 {
		return "", false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return s, true
}

// ParsePremiumCents parses a decimal-dollar premium into integer cents using
// round-half-to-even. Non-numeric or non-positive values are rejected.
func ParsePremiumCents(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, fmt.Errorf("missing premium")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid premium %q", s)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("premium must be greater than zero")
	}
	return d.Mul(decimal.NewFromInt(100)).RoundBank(0).IntPart(), nil
}

// FormatCents renders integer cents as dollars with two decimals and
// thousands separators, e.g. 123456 -> "$1,234.56". The upload summary and
// the household table use this same formatter.
func FormatCents(cents int64) string {
	d := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := "$" + b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// ParseDate tries the accepted layouts in order; nil when none matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range constants.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// CollectPhones gathers every mapped phone column for a row into an ordered
// list with blanks and duplicates removed. The first-seen formatting of a
// number is the one kept.
func CollectPhones(row map[string]string, phoneCols []string, mode PhoneMatchMode) []string {
	var out []string
	seen := make(map[string]bool)
	for _, col := range phoneCols {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		key := v
		if mode == PhoneMatchDigits {
			key = nonDigits.ReplaceAllString(v, "")
			if key == "" {
				continue
			}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
