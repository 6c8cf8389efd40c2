package constants

import "time"

const (
	DefaultTimeZone = "America/Chicago"

	// Upload pipeline
	MaxUploadBytes   = 32 << 20
	ParseTimeout     = 60 * time.Second
	UploadSampleRows = 5

	// Marketing spend accrual job
	DefaultAccrualSchedule = "0 2 1 * *" // 02:00 on the 1st of each month
)

// DateLayouts are the text formats accepted for quote/sale dates in uploads.
var DateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}
