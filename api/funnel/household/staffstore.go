package household

import (
	"context"

	"AgencyFunnelCRM/internal/staffgate"
)

// StaffStore satisfies Store by routing every operation through the
// privileged function endpoints instead of writing directly. Input/output
// contracts mirror PgxStore exactly; only the transport differs.
type StaffStore struct {
	client *staffgate.Client
}

func NewStaffStore(client *staffgate.Client) *StaffStore {
	return &StaffStore{client: client}
}

type keyLookupReq struct {
	AgencyID     string `json:"agency_id"`
	HouseholdKey string `json:"household_key"`
}

type keyLookupResp struct {
	Found     bool       `json:"found"`
	Household *Household `json:"household"`
}

func (s *StaffStore) GetByKey(ctx context.Context, agencyID, key string) (*Household, error) {
	var resp keyLookupResp
	err := s.client.Invoke(ctx, "household-by-key", keyLookupReq{AgencyID: agencyID, HouseholdKey: key}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	return resp.Household, nil
}

type idResp struct {
	ID string `json:"id"`
}

func (s *StaffStore) Insert(ctx context.Context, hh *Household) error {
	var resp idResp
	if err := s.client.Invoke(ctx, "household-insert", hh, &resp); err != nil {
		return err
	}
	hh.ID = resp.ID
	return nil
}

func (s *StaffStore) Update(ctx context.Context, hh *Household) error {
	return s.client.Invoke(ctx, "household-update", hh, nil)
}

func (s *StaffStore) InsertQuote(ctx context.Context, q *Quote) error {
	var resp idResp
	if err := s.client.Invoke(ctx, "quote-insert", q, &resp); err != nil {
		return err
	}
	q.ID = resp.ID
	return nil
}

func (s *StaffStore) InsertSale(ctx context.Context, sale *Sale) error {
	var resp idResp
	if err := s.client.Invoke(ctx, "sale-insert", sale, &resp); err != nil {
		return err
	}
	sale.ID = resp.ID
	return nil
}

type nameLookupReq struct {
	AgencyID string `json:"agency_id"`
	Name     string `json:"name"`
}

func (s *StaffStore) FindProducer(ctx context.Context, agencyID, nameOrCode string) (string, error) {
	var resp idResp
	err := s.client.Invoke(ctx, "producer-match", nameLookupReq{AgencyID: agencyID, Name: nameOrCode}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (s *StaffStore) FindLeadSource(ctx context.Context, agencyID, name string) (string, error) {
	var resp idResp
	err := s.client.Invoke(ctx, "lead-source-match", nameLookupReq{AgencyID: agencyID, Name: name}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
