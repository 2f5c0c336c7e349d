package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentaBack/internal/models"
)

type ProfileRepository struct {
	DB *sql.DB
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	var avatar sql.NullString
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, `SELECT id, full_name, email, phone, avatar_url, role, created_at, updated_at FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &avatar, &p.Role, &p.CreatedAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	p.AvatarURL = nullString(avatar)
	p.UpdatedAt = nullTime(updated)
	return p, nil
}

// Upsert creates the profile on first sign in and updates contact fields afterwards.
func (r *ProfileRepository) Upsert(ctx context.Context, p models.Profile) error {
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	query := `
	INSERT INTO profiles (id, full_name, email, phone, avatar_url, role)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE full_name = VALUES(full_name), email = VALUES(email), phone = VALUES(phone),
	    avatar_url = VALUES(avatar_url), updated_at = CURRENT_TIMESTAMP`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.FullName, p.Email, p.Phone, p.AvatarURL, p.Role)
	return err
}
