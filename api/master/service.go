package master

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"AgencyFunnelCRM/internal/serviceiface"
)

type MasterService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewMasterService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &MasterService{config: cfg, pool: pool}
}

func (s *MasterService) Name() string {
	return "master"
}

func (s *MasterService) Start() error {
	go StartMasterService(s.pool)
	return nil
}

func (s *MasterService) Stop() error {
	// Implement stop logic if needed
	return nil
}
