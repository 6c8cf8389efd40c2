package funnel

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/internal/serviceiface"
)

type FunnelService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewFunnelService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &FunnelService{config: cfg, pool: pool}
}

func (s *FunnelService) Name() string {
	return "funnel"
}

func (s *FunnelService) Start() error {
	go StartFunnelService(s.pool)
	return nil
}

func (s *FunnelService) Stop() error {
	// Implement stop logic if needed
	return nil
}
