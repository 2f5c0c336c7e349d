package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
	"rentaBack/internal/repositories"
)

const defaultDurationMonths = 12

type requestStore interface {
	Create(ctx context.Context, req models.ContractRequest, n *models.Notification) (models.ContractRequest, error)
	GetByID(ctx context.Context, id int64) (models.ContractRequest, error)
	Decide(ctx context.Context, d repositories.RequestDecision) error
	ListForUser(ctx context.Context, userID, party string) ([]models.ContractRequestView, error)
}

type propertyReader interface {
	GetByID(ctx context.Context, id int64) (models.Property, error)
}

type profileReader interface {
	Get(ctx context.Context, id string) (models.Profile, error)
}

type entitlementStore interface {
	ActivePlans(ctx context.Context, userID string, now time.Time) ([]string, error)
}

type kycChecker interface {
	HasValid(ctx context.Context, userID string, now time.Time) (bool, error)
}

type ContractRequestService struct {
	Requests      requestStore
	Properties    propertyReader
	Profiles      profileReader
	Subscriptions entitlementStore
	KYC           kycChecker
	Notifier      notifier
	Now           func() time.Time
}

// DecisionResult is the owner's answer to a request and the contract it produced.
type DecisionResult struct {
	Request  models.ContractRequest `json:"request"`
	Contract *models.RentalContract `json:"contract,omitempty"`
}

func (s *ContractRequestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// hasPro reports whether any subscription active at now is on a PRO plan.
func hasPro(ctx context.Context, subs entitlementStore, userID string, now time.Time) (bool, error) {
	plans, err := subs.ActivePlans(ctx, userID, now)
	if err != nil {
		return false, err
	}
	for _, plan := range plans {
		if models.IsPro(plan) {
			return true, nil
		}
	}
	return false, nil
}

func (s *ContractRequestService) ensureTenantCanRequest(ctx context.Context, tenantID string) error {
	now := s.now()
	pro, err := hasPro(ctx, s.Subscriptions, tenantID, now)
	if err != nil {
		return err
	}
	if !pro {
		return models.ErrProRequired
	}
	verified, err := s.KYC.HasValid(ctx, tenantID, now)
	if err != nil {
		return err
	}
	if !verified {
		return models.ErrKYCRequired
	}
	return nil
}

func (s *ContractRequestService) Create(ctx context.Context, tenantID string, propertyID int64, message string) (models.ContractRequest, error) {
	if err := s.ensureTenantCanRequest(ctx, tenantID); err != nil {
		return models.ContractRequest{}, err
	}
	prop, err := s.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return models.ContractRequest{}, err
	}
	if prop.Status != models.PropertyStatusActive {
		return models.ContractRequest{}, models.ErrPropertyUnavailable
	}
	if prop.OwnerID == tenantID {
		return models.ContractRequest{}, models.ErrOwnPropertyRequest
	}

	req := models.ContractRequest{
		PropertyID: prop.ID,
		TenantID:   tenantID,
		OwnerID:    prop.OwnerID,
		Message:    strings.TrimSpace(message),
	}
	n := &models.Notification{
		UserID: prop.OwnerID,
		Type:   models.NotificationContractRequest,
		Title:  "Nueva solicitud de contrato",
		Body:   fmt.Sprintf("Recibiste una solicitud de contrato para %s", prop.Title),
		Link:   "/contracts/requests",
	}
	created, err := s.Requests.Create(ctx, req, n)
	if err != nil {
		return models.ContractRequest{}, err
	}
	pushAll(ctx, s.Notifier, n)
	return created, nil
}

// Decide lets the owner approve or reject a pending request. Approval drafts
// the contract in the same transaction.
func (s *ContractRequestService) Decide(ctx context.Context, ownerID string, requestID int64, approve bool, terms models.ContractTerms) (DecisionResult, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return DecisionResult{}, err
	}
	if req.OwnerID != ownerID {
		return DecisionResult{}, models.ErrForbidden
	}
	action := fsm.ActionReject
	if approve {
		action = fsm.ActionApprove
	}
	to, err := fsm.NextRequest(req.Status, action)
	if err != nil {
		return DecisionResult{}, err
	}

	prop, err := s.Properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return DecisionResult{}, err
	}

	d := repositories.RequestDecision{RequestID: req.ID, FromStatus: req.Status, ToStatus: to}
	if approve {
		contract, err := s.draftContract(ctx, req, prop, terms)
		if err != nil {
			return DecisionResult{}, err
		}
		d.Contract = &contract
		d.Notification = &models.Notification{
			UserID: req.TenantID,
			Type:   models.NotificationRequestApproved,
			Title:  "Solicitud aprobada",
			Body:   fmt.Sprintf("El propietario aprobó tu solicitud para %s", prop.Title),
			Link:   "/contracts",
		}
	} else {
		d.Notification = &models.Notification{
			UserID: req.TenantID,
			Type:   models.NotificationRequestRejected,
			Title:  "Solicitud rechazada",
			Body:   fmt.Sprintf("El propietario rechazó tu solicitud para %s", prop.Title),
			Link:   "/contracts/requests",
		}
	}

	if err := s.Requests.Decide(ctx, d); err != nil {
		return DecisionResult{}, err
	}
	pushAll(ctx, s.Notifier, d.Notification)

	req.Status = to
	if d.Contract != nil {
		req.ContractID = &d.Contract.ID
	}
	return DecisionResult{Request: req, Contract: d.Contract}, nil
}

func (s *ContractRequestService) draftContract(ctx context.Context, req models.ContractRequest, prop models.Property, terms models.ContractTerms) (models.RentalContract, error) {
	reqID := req.ID
	c := models.RentalContract{
		RequestID:      &reqID,
		PropertyID:     prop.ID,
		TenantID:       req.TenantID,
		OwnerID:        req.OwnerID,
		MonthlyRent:    prop.Price,
		Deposit:        prop.Deposit,
		DurationMonths: defaultDurationMonths,
		Status:         fsm.StatusDraft,
		Version:        1,
	}
	start := s.now().AddDate(0, 1, 0)
	c.StartDate = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := applyTerms(&c, terms); err != nil {
		return models.RentalContract{}, err
	}

	content, err := renderWithProfiles(ctx, s.Profiles, c, prop)
	if err != nil {
		return models.RentalContract{}, err
	}
	c.Content = content
	return c, nil
}

func (s *ContractRequestService) ListForUser(ctx context.Context, userID, role string) ([]models.ContractRequestView, error) {
	if role != models.PartyTenant && role != models.PartyOwner {
		return nil, fmt.Errorf("%w: role must be tenant or owner", models.ErrInvalidInput)
	}
	return s.Requests.ListForUser(ctx, userID, role)
}

// applyTerms overrides the non-zero fields of terms and recomputes the end date.
func applyTerms(c *models.RentalContract, terms models.ContractTerms) error {
	if terms.MonthlyRent < 0 || terms.Deposit < 0 || terms.DurationMonths < 0 {
		return fmt.Errorf("%w: terms cannot be negative", models.ErrInvalidInput)
	}
	if terms.MonthlyRent > 0 {
		c.MonthlyRent = terms.MonthlyRent
	}
	if terms.Deposit > 0 {
		c.Deposit = terms.Deposit
	}
	if terms.DurationMonths > 0 {
		c.DurationMonths = terms.DurationMonths
	}
	if terms.StartDate != nil {
		c.StartDate = *terms.StartDate
	}
	contractDates(c)
	return nil
}

func renderWithProfiles(ctx context.Context, profiles profileReader, c models.RentalContract, prop models.Property) (string, error) {
	doc := contractDocument{Contract: c, Property: prop}
	var err error
	if doc.Tenant, err = profileOrBlank(ctx, profiles, c.TenantID); err != nil {
		return "", err
	}
	if doc.Owner, err = profileOrBlank(ctx, profiles, c.OwnerID); err != nil {
		return "", err
	}
	return renderContract(doc)
}

func profileOrBlank(ctx context.Context, profiles profileReader, id string) (models.Profile, error) {
	if profiles == nil {
		return models.Profile{ID: id}, nil
	}
	p, err := profiles.Get(ctx, id)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Profile{ID: id}, nil
	}
	return p, err
}
