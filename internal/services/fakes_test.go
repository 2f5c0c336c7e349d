package services

import (
	"context"
	"time"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
	"rentaBack/internal/repositories"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeNotifier struct {
	notified []models.Notification
	pushed   []models.Notification
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) (models.Notification, error) {
	if f.err != nil {
		return models.Notification{}, f.err
	}
	f.notified = append(f.notified, n)
	return n, nil
}

func (f *fakeNotifier) Push(_ context.Context, n models.Notification) {
	f.pushed = append(f.pushed, n)
}

type fakeProperties map[int64]models.Property

func (f fakeProperties) GetByID(_ context.Context, id int64) (models.Property, error) {
	p, ok := f[id]
	if !ok {
		return models.Property{}, models.ErrPropertyNotFound
	}
	return p, nil
}

type fakeProfiles map[string]models.Profile

func (f fakeProfiles) Get(_ context.Context, id string) (models.Profile, error) {
	p, ok := f[id]
	if !ok {
		return models.Profile{}, models.ErrUserNotFound
	}
	return p, nil
}

type fakeEntitlements map[string][]string

func (f fakeEntitlements) ActivePlans(_ context.Context, userID string, _ time.Time) ([]string, error) {
	return f[userID], nil
}

type fakeKYC map[string]bool

func (f fakeKYC) HasValid(_ context.Context, userID string, _ time.Time) (bool, error) {
	return f[userID], nil
}

type fakeRequests struct {
	rows      map[int64]models.ContractRequest
	created   []models.ContractRequest
	decisions []repositories.RequestDecision
	createErr error
}

func newFakeRequests(rows ...models.ContractRequest) *fakeRequests {
	f := &fakeRequests{rows: map[int64]models.ContractRequest{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRequests) Create(_ context.Context, req models.ContractRequest, _ *models.Notification) (models.ContractRequest, error) {
	if f.createErr != nil {
		return models.ContractRequest{}, f.createErr
	}
	req.ID = int64(len(f.rows) + 1)
	req.Status = fsm.StatusPending
	f.rows[req.ID] = req
	f.created = append(f.created, req)
	return req, nil
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (models.ContractRequest, error) {
	r, ok := f.rows[id]
	if !ok {
		return models.ContractRequest{}, models.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeRequests) Decide(_ context.Context, d repositories.RequestDecision) error {
	r := f.rows[d.RequestID]
	if r.Status != d.FromStatus {
		return fsm.ErrConcurrentUpdate
	}
	r.Status = d.ToStatus
	if d.Contract != nil {
		d.Contract.ID = 900 + d.RequestID
	}
	f.rows[d.RequestID] = r
	f.decisions = append(f.decisions, d)
	return nil
}

func (f *fakeRequests) ListForUser(context.Context, string, string) ([]models.ContractRequestView, error) {
	return nil, nil
}

// fakeContracts applies transitions with the same compare-and-swap rule as the database.
type fakeContracts struct {
	rows        map[int64]models.RentalContract
	transitions []models.ContractTransition
	overdue     []models.RentalContract
}

func newFakeContracts(rows ...models.RentalContract) *fakeContracts {
	f := &fakeContracts{rows: map[int64]models.RentalContract{}}
	for _, c := range rows {
		f.rows[c.ID] = c
	}
	return f
}

func (f *fakeContracts) GetByID(_ context.Context, id int64) (models.RentalContract, error) {
	c, ok := f.rows[id]
	if !ok {
		return models.RentalContract{}, models.ErrContractNotFound
	}
	return c, nil
}

func (f *fakeContracts) Transition(_ context.Context, t models.ContractTransition) error {
	c := f.rows[t.ContractID]
	if c.Status != t.FromStatus || c.Version != t.Version {
		return fsm.ErrConcurrentUpdate
	}
	if t.Terms != nil {
		c.MonthlyRent, c.Deposit, c.DurationMonths = t.Terms.MonthlyRent, t.Terms.Deposit, t.Terms.DurationMonths
		c.StartDate, c.EndDate, c.Content = t.Terms.StartDate, t.Terms.EndDate, t.Terms.Content
	}
	c.Status = t.ToStatus
	c.Version++
	f.rows[c.ID] = c
	f.transitions = append(f.transitions, t)
	return nil
}

func (f *fakeContracts) ListForUser(context.Context, string, string, string) ([]models.ContractView, error) {
	return nil, nil
}

func (f *fakeContracts) ListOverdue(context.Context, time.Time) ([]models.RentalContract, error) {
	return f.overdue, nil
}

type fakeContractMessages struct {
	added []models.ContractMessage
	list  []models.ContractMessage
}

func (f *fakeContractMessages) Add(_ context.Context, m models.ContractMessage, _ *models.Notification) (models.ContractMessage, error) {
	m.ID = int64(len(f.added) + 1)
	f.added = append(f.added, m)
	return m, nil
}

func (f *fakeContractMessages) List(context.Context, int64) ([]models.ContractMessage, error) {
	return f.list, nil
}

func (f *fakeContractMessages) MarkRead(context.Context, int64, string) (int64, error) {
	return int64(len(f.list)), nil
}
