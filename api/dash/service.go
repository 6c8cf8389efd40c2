package dash

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/internal/serviceiface"
)

type DashService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewDashService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &DashService{config: cfg, pool: pool}
}

func (s *DashService) Name() string {
	return "dash"
}

func (s *DashService) Start() error {
	go StartDashService(s.pool)
	return nil
}

func (s *DashService) Stop() error {
	// Implement stop logic if needed
	return nil
}
