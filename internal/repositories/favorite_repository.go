package repositories

import (
	"context"
	"database/sql"

	"rentaBack/internal/models"
)

type FavoriteRepository struct {
	DB *sql.DB
}

// Add stores the favorite. Adding the same property twice is not an error.
func (r *FavoriteRepository) Add(ctx context.Context, userID string, propertyID int64) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO favorites (user_id, property_id) VALUES (?, ?)`, userID, propertyID)
	if isDuplicateEntry(err) {
		return nil
	}
	if isForeignKeyViolation(err) {
		return models.ErrPropertyNotFound
	}
	return err
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID string, propertyID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND property_id = ?`, userID, propertyID)
	return err
}

func (r *FavoriteRepository) IsFavorite(ctx context.Context, userID string, propertyID int64) (bool, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND property_id = ?`, userID, propertyID).Scan(&count)
	return count > 0, err
}

func (r *FavoriteRepository) Count(ctx context.Context, propertyID int64) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE property_id = ?`, propertyID).Scan(&count)
	return count, err
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	query := `
	SELECT f.id, f.user_id, f.property_id, f.created_at, p.title, p.address, p.city, p.price, p.images
	FROM favorites f
	JOIN properties p ON p.id = f.property_id
	WHERE f.user_id = ?
	ORDER BY f.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favs := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		var prop models.PropertySummary
		var images sql.NullString
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.PropertyID, &fav.CreatedAt, &prop.Title, &prop.Address, &prop.City, &prop.Price, &images); err != nil {
			return nil, err
		}
		prop.ID = fav.PropertyID
		prop.ImagePath = firstImage(images)
		fav.Property = &prop
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}
