package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
)

type ContractRepository struct {
	DB *sql.DB
}

const contractColumns = `c.id, c.request_id, c.property_id, c.tenant_id, c.owner_id, c.monthly_rent, c.deposit, c.duration_months,
       c.start_date, c.end_date, c.content, c.status, c.version, c.created_at, c.updated_at`

func scanContract(s scanner, extra ...any) (models.RentalContract, error) {
	var c models.RentalContract
	var requestID sql.NullInt64
	var updated sql.NullTime
	dest := append([]any{&c.ID, &requestID, &c.PropertyID, &c.TenantID, &c.OwnerID, &c.MonthlyRent, &c.Deposit, &c.DurationMonths,
		&c.StartDate, &c.EndDate, &c.Content, &c.Status, &c.Version, &c.CreatedAt, &updated}, extra...)
	if err := s.Scan(dest...); err != nil {
		return models.RentalContract{}, err
	}
	c.RequestID = nullInt(requestID)
	c.UpdatedAt = nullTime(updated)
	return c, nil
}

func insertContract(ctx context.Context, tx *sql.Tx, c *models.RentalContract) (int64, error) {
	if c.Version == 0 {
		c.Version = 1
	}
	res, err := tx.ExecContext(ctx, `
	INSERT INTO rental_contracts (request_id, property_id, tenant_id, owner_id, monthly_rent, deposit, duration_months, start_date, end_date, content, status, version)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RequestID, c.PropertyID, c.TenantID, c.OwnerID, c.MonthlyRent, c.Deposit, c.DurationMonths,
		c.StartDate, c.EndDate, c.Content, c.Status, c.Version)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ContractRepository) GetByID(ctx context.Context, id int64) (models.RentalContract, error) {
	c, err := scanContract(r.DB.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM rental_contracts c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.RentalContract{}, models.ErrContractNotFound
	}
	return c, err
}

// Transition applies one lifecycle move and its side effects atomically. A
// stale status or version yields fsm.ErrConcurrentUpdate and nothing is written.
func (r *ContractRepository) Transition(ctx context.Context, t models.ContractTransition) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := fsm.Apply(ctx, tx, t.ContractID, t.FromStatus, t.ToStatus, t.Version); err != nil {
			return err
		}
		if t.Terms != nil {
			_, err := tx.ExecContext(ctx, `
			UPDATE rental_contracts
			SET monthly_rent = ?, deposit = ?, duration_months = ?, start_date = ?, end_date = ?, content = ?
			WHERE id = ?`,
				t.Terms.MonthlyRent, t.Terms.Deposit, t.Terms.DurationMonths, t.Terms.StartDate, t.Terms.EndDate, t.Terms.Content, t.ContractID)
			if err != nil {
				return err
			}
		}
		if t.Message != nil {
			if err := insertContractMessage(ctx, tx, t.Message); err != nil {
				return err
			}
		}
		return insertNotification(ctx, tx, t.Notification)
	})
}

// ListForUser returns the contracts where userID is the given party. An empty
// status lists every status.
func (r *ContractRepository) ListForUser(ctx context.Context, userID, party, status string) ([]models.ContractView, error) {
	self := "c.tenant_id"
	if party == models.PartyOwner {
		self = "c.owner_id"
	}
	query := `
	SELECT ` + contractColumns + `,
	       p.title, p.address, p.city, p.price, p.images,
	       COALESCE(t.full_name, ''), t.avatar_url, COALESCE(t.phone, ''),
	       COALESCE(o.full_name, ''), o.avatar_url, COALESCE(o.phone, ''),
	       (SELECT COUNT(*) FROM contract_messages m WHERE m.contract_id = c.id AND m.is_read = 0 AND m.sender_id <> ?) AS unread
	FROM rental_contracts c
	JOIN properties p ON p.id = c.property_id
	LEFT JOIN profiles t ON t.id = c.tenant_id
	LEFT JOIN profiles o ON o.id = c.owner_id
	WHERE ` + self + ` = ?`
	args := []interface{}{userID, userID}
	if status != "" {
		query += " AND c.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY COALESCE(c.updated_at, c.created_at) DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ContractView{}
	for rows.Next() {
		var v models.ContractView
		var images, tAvatar, oAvatar sql.NullString
		c, err := scanContract(rows,
			&v.Property.Title, &v.Property.Address, &v.Property.City, &v.Property.Price, &images,
			&v.Tenant.FullName, &tAvatar, &v.Tenant.Phone,
			&v.Owner.FullName, &oAvatar, &v.Owner.Phone,
			&v.UnreadCount)
		if err != nil {
			return nil, err
		}
		v.RentalContract = c
		v.Role = party
		v.Property.ID = c.PropertyID
		v.Property.ImagePath = firstImage(images)
		v.Tenant.ID = c.TenantID
		v.Tenant.AvatarURL = nullString(tAvatar)
		v.Owner.ID = c.OwnerID
		v.Owner.AvatarURL = nullString(oAvatar)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListOverdue returns approved or signed contracts whose start date is before cutoff.
func (r *ContractRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]models.RentalContract, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM rental_contracts c WHERE c.status IN (?, ?) AND c.start_date < ?`,
		fsm.StatusApproved, fsm.StatusSigned, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RentalContract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
