package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rentaBack/internal/models"
)

// kycValidity is how long a verified identity check stays usable.
const kycValidity = 365 * 24 * time.Hour

type kycStore interface {
	Submit(ctx context.Context, k models.KYCVerification) (models.KYCVerification, error)
	GetByID(ctx context.Context, id int64) (models.KYCVerification, error)
	Latest(ctx context.Context, userID string) (models.KYCVerification, error)
	HasValid(ctx context.Context, userID string, now time.Time) (bool, error)
	Review(ctx context.Context, id int64, status, notes string, verifiedAt, expiresAt *time.Time) error
	ListPending(ctx context.Context) ([]models.KYCVerification, error)
}

type insuranceStore interface {
	Create(ctx context.Context, a models.InsuranceApproval) (models.InsuranceApproval, error)
	HasActive(ctx context.Context, tenantID string, now time.Time) (bool, error)
}

type KYCService struct {
	Repo      kycStore
	Insurance insuranceStore
	Notifier  notifier
	ErrorLog  *log.Logger
	Now       func() time.Time
}

func (s *KYCService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var documentTypes = map[string]bool{"CC": true, "CE": true, "PASSPORT": true, "NIT": true}

func (s *KYCService) Submit(ctx context.Context, userID, documentType, documentNumber string) (models.KYCVerification, error) {
	documentType = strings.ToUpper(strings.TrimSpace(documentType))
	documentNumber = strings.TrimSpace(documentNumber)
	if !documentTypes[documentType] {
		return models.KYCVerification{}, fmt.Errorf("%w: unsupported document type", models.ErrInvalidInput)
	}
	if documentNumber == "" {
		return models.KYCVerification{}, fmt.Errorf("%w: document number is required", models.ErrInvalidInput)
	}
	return s.Repo.Submit(ctx, models.KYCVerification{
		UserID:         userID,
		DocumentType:   documentType,
		DocumentNumber: documentNumber,
		Status:         models.KYCStatusPending,
	})
}

// Status returns the latest verification and whether the user counts as verified now.
func (s *KYCService) Status(ctx context.Context, userID string) (*models.KYCVerification, bool, error) {
	k, err := s.Repo.Latest(ctx, userID)
	if errors.Is(err, models.ErrNoRecord) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	valid, err := s.Repo.HasValid(ctx, userID, s.now())
	if err != nil {
		return nil, false, err
	}
	return &k, valid, nil
}

// Review settles a pending verification. Verified records expire a year later.
func (s *KYCService) Review(ctx context.Context, id int64, approve bool, notes string) (models.KYCVerification, error) {
	k, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return models.KYCVerification{}, err
	}
	if k.Status != models.KYCStatusPending {
		return models.KYCVerification{}, fmt.Errorf("%w: verification already reviewed", models.ErrInvalidInput)
	}

	k.Status = models.KYCStatusRejected
	k.Notes = strings.TrimSpace(notes)
	if approve {
		now := s.now()
		expires := now.Add(kycValidity)
		k.Status = models.KYCStatusVerified
		k.VerifiedAt = &now
		k.ExpiresAt = &expires
	}
	if err := s.Repo.Review(ctx, id, k.Status, k.Notes, k.VerifiedAt, k.ExpiresAt); err != nil {
		return models.KYCVerification{}, err
	}

	if s.Notifier != nil {
		n := models.Notification{
			UserID: k.UserID,
			Type:   models.NotificationKYC,
			Title:  "Verificación de identidad rechazada",
			Body:   k.Notes,
			Link:   "/profile/verification",
		}
		if approve {
			n.Title = "Identidad verificada"
			n.Body = "Ya puedes solicitar contratos"
		}
		if _, err := s.Notifier.Notify(ctx, n); err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("kyc review %d: notify %s: %v", id, k.UserID, err)
		}
	}
	return k, nil
}

func (s *KYCService) ListPending(ctx context.Context) ([]models.KYCVerification, error) {
	return s.Repo.ListPending(ctx)
}

func (s *KYCService) HasActiveInsuranceApproval(ctx context.Context, tenantID string) (bool, error) {
	return s.Insurance.HasActive(ctx, tenantID, s.now())
}

func (s *KYCService) RecordInsurance(ctx context.Context, a models.InsuranceApproval) (models.InsuranceApproval, error) {
	switch {
	case a.TenantID == "" || strings.TrimSpace(a.Insurer) == "":
		return models.InsuranceApproval{}, fmt.Errorf("%w: tenant_id and insurer are required", models.ErrInvalidInput)
	case a.ValidUntil.IsZero():
		return models.InsuranceApproval{}, fmt.Errorf("%w: valid_until is required", models.ErrInvalidInput)
	}
	if a.Status == "" {
		a.Status = models.InsuranceStatusApproved
	}
	return s.Insurance.Create(ctx, a)
}
