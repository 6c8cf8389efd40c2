package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/internal/logger"
	"AgencyFunnelCRM/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	accrualConfig := NewDefaultAccrualConfig()

	// Override accrual config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["accrual_schedule"].(string); ok && schedule != "" {
			accrualConfig.Schedule = schedule
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			accrualConfig.TimeZone = tz
		}
	}

	err := RunSpendAccrualScheduler(accrualConfig, s.db)
	if err != nil {
		return fmt.Errorf("failed to start spend accrual scheduler: %v", err)
	}

	logger.GlobalLogger.LogAudit("Cron service started with marketing spend accrual")
	log.Println("Cron service started — Spend Accrual scheduled")
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Stopping cron service...")
	return nil
}
