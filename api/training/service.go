package training

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/internal/serviceiface"
)

type TrainingService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewTrainingService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &TrainingService{config: cfg, pool: pool}
}

func (s *TrainingService) Name() string {
	return "training"
}

func (s *TrainingService) Start() error {
	go StartTrainingService(s.pool)
	return nil
}

func (s *TrainingService) Stop() error {
	// Implement stop logic if needed
	return nil
}
