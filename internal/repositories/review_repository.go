package repositories

import (
	"context"
	"database/sql"

	"rentaBack/internal/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r *ReviewRepository) Create(ctx context.Context, rev models.Review) (models.Review, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO reviews (property_id, user_id, rating, comment) VALUES (?, ?, ?, ?)`,
		rev.PropertyID, rev.UserID, rev.Rating, rev.Comment)
	if err != nil {
		switch {
		case isDuplicateEntry(err):
			return models.Review{}, models.ErrAlreadyReviewed
		case isForeignKeyViolation(err):
			return models.Review{}, models.ErrPropertyNotFound
		}
		return models.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Review{}, err
	}
	rev.ID = id
	return rev, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, propertyID int64) (models.PropertyReviews, error) {
	query := `
	SELECT r.id, r.property_id, r.user_id, r.rating, r.comment, r.created_at, COALESCE(pr.full_name, '')
	FROM reviews r
	LEFT JOIN profiles pr ON pr.id = r.user_id
	WHERE r.property_id = ?
	ORDER BY r.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, propertyID)
	if err != nil {
		return models.PropertyReviews{}, err
	}
	defer rows.Close()

	out := models.PropertyReviews{Reviews: []models.Review{}}
	var sum int
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.PropertyID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt, &rev.UserName); err != nil {
			return models.PropertyReviews{}, err
		}
		sum += rev.Rating
		out.Reviews = append(out.Reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return models.PropertyReviews{}, err
	}
	out.Count = len(out.Reviews)
	if out.Count > 0 {
		out.AvgRating = float64(sum) / float64(out.Count)
	}
	return out, nil
}
