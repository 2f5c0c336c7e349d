package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentaBack/internal/models"
)

type IntentionRepository struct {
	DB *sql.DB
}

// Create stores the intention and reports whether a new row was written.
func (r *IntentionRepository) Create(ctx context.Context, in models.Intention) (models.Intention, bool, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO rental_intentions (property_id, tenant_id, owner_id, message) VALUES (?, ?, ?, ?)`,
		in.PropertyID, in.TenantID, in.OwnerID, in.Message)
	if isDuplicateEntry(err) {
		existing, getErr := r.getByPair(ctx, in.PropertyID, in.TenantID)
		return existing, false, getErr
	}
	if err != nil {
		return models.Intention{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Intention{}, false, err
	}
	in.ID = id
	return in, true, nil
}

func (r *IntentionRepository) getByPair(ctx context.Context, propertyID int64, tenantID string) (models.Intention, error) {
	var in models.Intention
	err := r.DB.QueryRowContext(ctx, `SELECT id, property_id, tenant_id, owner_id, message, created_at FROM rental_intentions WHERE property_id = ? AND tenant_id = ?`,
		propertyID, tenantID).Scan(&in.ID, &in.PropertyID, &in.TenantID, &in.OwnerID, &in.Message, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Intention{}, models.ErrNoRecord
	}
	return in, err
}

func (r *IntentionRepository) ListForOwner(ctx context.Context, ownerID string) ([]models.Intention, error) {
	return r.list(ctx, `i.owner_id = ?`, ownerID)
}

func (r *IntentionRepository) ListForTenant(ctx context.Context, tenantID string) ([]models.Intention, error) {
	return r.list(ctx, `i.tenant_id = ?`, tenantID)
}

func (r *IntentionRepository) list(ctx context.Context, cond string, arg string) ([]models.Intention, error) {
	query := `
	SELECT i.id, i.property_id, i.tenant_id, i.owner_id, i.message, i.created_at,
	       p.title, p.address, p.city, p.price, p.images,
	       COALESCE(t.full_name, ''), t.avatar_url, COALESCE(t.phone, '')
	FROM rental_intentions i
	JOIN properties p ON p.id = i.property_id
	LEFT JOIN profiles t ON t.id = i.tenant_id
	WHERE ` + cond + `
	ORDER BY i.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Intention{}
	for rows.Next() {
		var in models.Intention
		var prop models.PropertySummary
		var tenant models.ProfileSummary
		var images, avatar sql.NullString
		if err := rows.Scan(&in.ID, &in.PropertyID, &in.TenantID, &in.OwnerID, &in.Message, &in.CreatedAt,
			&prop.Title, &prop.Address, &prop.City, &prop.Price, &images,
			&tenant.FullName, &avatar, &tenant.Phone); err != nil {
			return nil, err
		}
		prop.ID = in.PropertyID
		prop.ImagePath = firstImage(images)
		tenant.ID = in.TenantID
		tenant.AvatarURL = nullString(avatar)
		in.Property = &prop
		in.Tenant = &tenant
		out = append(out, in)
	}
	return out, rows.Err()
}
