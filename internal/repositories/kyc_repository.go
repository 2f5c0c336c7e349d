package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentaBack/internal/models"
)

type KYCRepository struct {
	DB *sql.DB
}

const kycColumns = `id, user_id, document_type, document_number, status, notes, verified_at, expires_at, created_at`

func scanKYC(s scanner) (models.KYCVerification, error) {
	var k models.KYCVerification
	var verified, expires sql.NullTime
	if err := s.Scan(&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.Status, &k.Notes, &verified, &expires, &k.CreatedAt); err != nil {
		return models.KYCVerification{}, err
	}
	k.VerifiedAt = nullTime(verified)
	k.ExpiresAt = nullTime(expires)
	return k, nil
}

func (r *KYCRepository) Submit(ctx context.Context, k models.KYCVerification) (models.KYCVerification, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO kyc_verifications (user_id, document_type, document_number, status) VALUES (?, ?, ?, ?)`,
		k.UserID, k.DocumentType, k.DocumentNumber, models.KYCStatusPending)
	if err != nil {
		return models.KYCVerification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.KYCVerification{}, err
	}
	k.ID = id
	k.Status = models.KYCStatusPending
	return k, nil
}

func (r *KYCRepository) GetByID(ctx context.Context, id int64) (models.KYCVerification, error) {
	k, err := scanKYC(r.DB.QueryRowContext(ctx, `SELECT `+kycColumns+` FROM kyc_verifications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.KYCVerification{}, models.ErrNoRecord
	}
	return k, err
}

// Latest returns the user's most recent verification record.
func (r *KYCRepository) Latest(ctx context.Context, userID string) (models.KYCVerification, error) {
	k, err := scanKYC(r.DB.QueryRowContext(ctx,
		`SELECT `+kycColumns+` FROM kyc_verifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.KYCVerification{}, models.ErrNoRecord
	}
	return k, err
}

// HasValid reports whether the user holds a verified record that has not expired at now.
func (r *KYCRepository) HasValid(ctx context.Context, userID string, now time.Time) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kyc_verifications WHERE user_id = ? AND status = 'verified' AND (expires_at IS NULL OR expires_at > ?)`,
		userID, now).Scan(&n)
	return n > 0, err
}

func (r *KYCRepository) Review(ctx context.Context, id int64, status, notes string, verifiedAt, expiresAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE kyc_verifications SET status = ?, notes = ?, verified_at = ?, expires_at = ? WHERE id = ? AND status = 'pending'`,
		status, notes, verifiedAt, expiresAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}

func (r *KYCRepository) ListPending(ctx context.Context) ([]models.KYCVerification, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+kycColumns+` FROM kyc_verifications WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.KYCVerification{}
	for rows.Next() {
		k, err := scanKYC(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

type InsuranceRepository struct {
	DB *sql.DB
}

func (r *InsuranceRepository) Create(ctx context.Context, a models.InsuranceApproval) (models.InsuranceApproval, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO insurance_approvals (tenant_id, insurer, status, max_rent, valid_until) VALUES (?, ?, ?, ?, ?)`,
		a.TenantID, a.Insurer, a.Status, a.MaxRent, a.ValidUntil)
	if err != nil {
		return models.InsuranceApproval{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.InsuranceApproval{}, err
	}
	a.ID = id
	return a, nil
}

func (r *InsuranceRepository) HasActive(ctx context.Context, tenantID string, now time.Time) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM insurance_approvals WHERE tenant_id = ? AND status = 'approved' AND valid_until > ?`,
		tenantID, now).Scan(&n)
	return n > 0, err
}
