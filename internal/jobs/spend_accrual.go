package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/internal/logger"
)

// AccrualConfig controls the monthly-fixed marketing spend accrual job.
type AccrualConfig struct {
	Schedule string
	TimeZone string
}

func NewDefaultAccrualConfig() *AccrualConfig {
	return &AccrualConfig{
		Schedule: constants.DefaultAccrualSchedule,
		TimeZone: constants.DefaultTimeZone,
	}
}

// RunSpendAccrualScheduler books one marketing_spend ledger row per
// monthly-fixed lead source for the month that just ended. Re-runs are safe:
// the (lead_source_id, period_month) unique key makes the insert idempotent.
func RunSpendAccrualScheduler(cfg *AccrualConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = constants.DefaultAccrualSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = constants.DefaultTimeZone
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for spend accrual: %v", err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		now := time.Now().In(loc)
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Running marketing spend accrual at %s", now))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		booked, err := AccrueMonthlyFixed(ctx, db, PreviousMonth(now))
		if err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Spend accrual failed: %v", err))
			return
		}
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Spend accrual completed: %d sources booked", booked))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule spend accrual cron job: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit("Marketing Spend Accrual Job scheduled for " + cfg.Schedule + " (" + cfg.TimeZone + ")")
	return nil
}

// PreviousMonth returns the first day of the month before t, at midnight in
// t's location.
func PreviousMonth(t time.Time) time.Time {
	firstOfThis := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return firstOfThis.AddDate(0, -1, 0)
}

// AccrueMonthlyFixed inserts a ledger row for every active monthly-fixed
// lead source for the given period month, skipping sources already booked.
// Returns the number of rows actually inserted.
func AccrueMonthlyFixed(ctx context.Context, db *pgxpool.Pool, period time.Time) (int64, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO marketing_spend (agency_id, lead_source_id, period_month, amount_cents, source)
		SELECT ls.agency_id, ls.lead_source_id, $1::date, ls.cost_cents, 'accrual'
		FROM lead_sources ls
		WHERE ls.cost_type = 'monthly_fixed'
		  AND NOT ls.self_generated
		  AND ls.active_status = 'active'
		  AND ls.cost_cents > 0
		ON CONFLICT (lead_source_id, period_month) DO NOTHING
	`, period)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
