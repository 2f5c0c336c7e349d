package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
)

type ContractRequestRepository struct {
	DB *sql.DB
}

const requestColumns = `r.id, r.property_id, r.tenant_id, r.owner_id, r.status, r.message, r.contract_id, r.created_at, r.updated_at`

func scanRequest(s scanner, extra ...any) (models.ContractRequest, error) {
	var req models.ContractRequest
	var contractID sql.NullInt64
	var updated sql.NullTime
	dest := append([]any{&req.ID, &req.PropertyID, &req.TenantID, &req.OwnerID, &req.Status, &req.Message, &contractID, &req.CreatedAt, &updated}, extra...)
	if err := s.Scan(dest...); err != nil {
		return models.ContractRequest{}, err
	}
	req.ContractID = nullInt(contractID)
	req.UpdatedAt = nullTime(updated)
	return req, nil
}

// Create writes a pending request unless the tenant already has one for the property.
func (r *ContractRequestRepository) Create(ctx context.Context, req models.ContractRequest, n *models.Notification) (models.ContractRequest, error) {
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM contract_requests WHERE property_id = ? AND tenant_id = ? AND status = 'pending' LIMIT 1 FOR UPDATE`,
			req.PropertyID, req.TenantID).Scan(&existing)
		if err == nil {
			return models.ErrDuplicateRequest
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO contract_requests (property_id, tenant_id, owner_id, status, message) VALUES (?, ?, ?, ?, ?)`,
			req.PropertyID, req.TenantID, req.OwnerID, fsm.StatusPending, req.Message)
		if err != nil {
			if isForeignKeyViolation(err) {
				return models.ErrPropertyNotFound
			}
			return err
		}
		if req.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		req.Status = fsm.StatusPending
		return insertNotification(ctx, tx, n)
	})
	if err != nil {
		return models.ContractRequest{}, err
	}
	return req, nil
}

func (r *ContractRequestRepository) GetByID(ctx context.Context, id int64) (models.ContractRequest, error) {
	req, err := scanRequest(r.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM contract_requests r WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContractRequest{}, models.ErrRequestNotFound
	}
	return req, err
}

// RequestDecision moves a request out of pending, optionally drafting its contract.
type RequestDecision struct {
	RequestID    int64
	FromStatus   string
	ToStatus     string
	Contract     *models.RentalContract
	Notification *models.Notification
}

func (r *ContractRequestRepository) Decide(ctx context.Context, d RequestDecision) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := fsm.ApplyRequest(ctx, tx, d.RequestID, d.FromStatus, d.ToStatus); err != nil {
			return err
		}
		if d.Contract != nil {
			id, err := insertContract(ctx, tx, d.Contract)
			if err != nil {
				return err
			}
			d.Contract.ID = id
			if _, err := tx.ExecContext(ctx, `UPDATE contract_requests SET contract_id = ? WHERE id = ?`, id, d.RequestID); err != nil {
				return err
			}
		}
		return insertNotification(ctx, tx, d.Notification)
	})
}

// ListForUser returns requests where the user is the given party, newest first.
func (r *ContractRequestRepository) ListForUser(ctx context.Context, userID, party string) ([]models.ContractRequestView, error) {
	self, other := "r.tenant_id", "r.owner_id"
	if party == models.PartyOwner {
		self, other = "r.owner_id", "r.tenant_id"
	}
	query := `
	SELECT ` + requestColumns + `,
	       p.title, p.address, p.city, p.price, p.images,
	       pr.id, COALESCE(pr.full_name, ''), pr.avatar_url, COALESCE(pr.phone, '')
	FROM contract_requests r
	JOIN properties p ON p.id = r.property_id
	LEFT JOIN profiles pr ON pr.id = ` + other + `
	WHERE ` + self + ` = ?
	ORDER BY r.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ContractRequestView{}
	for rows.Next() {
		var v models.ContractRequestView
		var images, avatar, cpID sql.NullString
		req, err := scanRequest(rows,
			&v.Property.Title, &v.Property.Address, &v.Property.City, &v.Property.Price, &images,
			&cpID, &v.Counterparty.FullName, &avatar, &v.Counterparty.Phone)
		if err != nil {
			return nil, err
		}
		v.ContractRequest = req
		v.Property.ID = req.PropertyID
		v.Property.ImagePath = firstImage(images)
		v.Counterparty.ID = cpID.String
		v.Counterparty.AvatarURL = nullString(avatar)
		out = append(out, v)
	}
	return out, rows.Err()
}
