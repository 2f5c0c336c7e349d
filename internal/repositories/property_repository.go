package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"rentaBack/internal/models"
)

type PropertyRepository struct {
	DB *sql.DB
}

const propertyColumns = `p.id, p.owner_id, p.title, p.description, p.property_type, p.address, p.neighborhood, p.city,
       p.price, p.deposit, p.area_m2, p.bedrooms, p.bathrooms, p.latitude, p.longitude, p.images, p.status,
       (SELECT COUNT(*) FROM favorites f WHERE f.property_id = p.id) AS favorite_count,
       p.created_at, p.updated_at`

func scanProperty(s scanner) (models.Property, error) {
	var p models.Property
	var area, lat, lon sql.NullFloat64
	var images sql.NullString
	var updated sql.NullTime
	err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.PropertyType, &p.Address, &p.Neighborhood, &p.City,
		&p.Price, &p.Deposit, &area, &p.Bedrooms, &p.Bathrooms, &lat, &lon, &images, &p.Status,
		&p.FavoriteCount, &p.CreatedAt, &updated)
	if err != nil {
		return models.Property{}, err
	}
	p.AreaM2 = nullFloat(area)
	p.Latitude = nullFloat(lat)
	p.Longitude = nullFloat(lon)
	p.Images = decodeImages(images)
	p.UpdatedAt = nullTime(updated)
	return p, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p models.Property) (models.Property, error) {
	images, err := encodeImages(p.Images)
	if err != nil {
		return models.Property{}, err
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}
	query := `
	INSERT INTO properties (owner_id, title, description, property_type, address, neighborhood, city, price, deposit, area_m2, bedrooms, bathrooms, latitude, longitude, images, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query,
		p.OwnerID, p.Title, p.Description, p.PropertyType, p.Address, p.Neighborhood, p.City,
		p.Price, p.Deposit, p.AreaM2, p.Bedrooms, p.Bathrooms, p.Latitude, p.Longitude, images, p.Status,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Property{}, models.ErrUserNotFound
		}
		return models.Property{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Property{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = ?`
	p, err := scanProperty(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Property{}, models.ErrPropertyNotFound
	}
	return p, err
}

func (r *PropertyRepository) Update(ctx context.Context, p models.Property) (models.Property, error) {
	images, err := encodeImages(p.Images)
	if err != nil {
		return models.Property{}, err
	}
	query := `
	UPDATE properties
	SET title = ?, description = ?, property_type = ?, address = ?, neighborhood = ?, city = ?, price = ?, deposit = ?,
	    area_m2 = ?, bedrooms = ?, bathrooms = ?, latitude = ?, longitude = ?, images = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND owner_id = ?`
	res, err := r.DB.ExecContext(ctx, query,
		p.Title, p.Description, p.PropertyType, p.Address, p.Neighborhood, p.City, p.Price, p.Deposit,
		p.AreaM2, p.Bedrooms, p.Bathrooms, p.Latitude, p.Longitude, images, p.ID, p.OwnerID,
	)
	if err != nil {
		return models.Property{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Property{}, models.ErrPropertyNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PropertyRepository) UpdateStatus(ctx context.Context, id int64, ownerID, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE properties SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?`, status, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.owner_id = ? ORDER BY p.created_at DESC`
	return r.list(ctx, query, ownerID)
}

// Search returns active listings matching the filter together with the price
// bounds of the whole matching set.
func (r *PropertyRepository) Search(ctx context.Context, f models.PropertyFilter, userID string) (models.PropertyListResponse, error) {
	where := " WHERE p.status = 'active'"
	var args []interface{}

	if f.City != "" {
		where += " AND p.city = ?"
		args = append(args, f.City)
	}
	if f.Neighborhood != "" {
		where += " AND p.neighborhood = ?"
		args = append(args, f.Neighborhood)
	}
	if f.PropertyType != "" {
		where += " AND p.property_type = ?"
		args = append(args, f.PropertyType)
	}
	if f.PriceFrom > 0 {
		where += " AND p.price >= ?"
		args = append(args, f.PriceFrom)
	}
	if f.PriceTo > 0 {
		where += " AND p.price <= ?"
		args = append(args, f.PriceTo)
	}
	if f.MinBedrooms > 0 {
		where += " AND p.bedrooms >= ?"
		args = append(args, f.MinBedrooms)
	}

	var resp models.PropertyListResponse
	var minPrice, maxPrice sql.NullFloat64
	boundsQuery := `SELECT MIN(p.price), MAX(p.price) FROM properties p` + where
	if err := r.DB.QueryRowContext(ctx, boundsQuery, args...).Scan(&minPrice, &maxPrice); err != nil {
		return resp, err
	}
	resp.MinPrice = minPrice.Float64
	resp.MaxPrice = maxPrice.Float64

	query := `SELECT ` + propertyColumns + ` FROM properties p` + where
	switch f.Sort {
	case 2:
		query += " ORDER BY p.price DESC"
	case 3:
		query += " ORDER BY p.price ASC"
	default:
		query += " ORDER BY p.created_at DESC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	query += " LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), limit, (page-1)*limit)

	props, err := r.list(ctx, query, pageArgs...)
	if err != nil {
		return resp, err
	}
	if userID != "" && len(props) > 0 {
		if err := r.markLiked(ctx, props, userID); err != nil {
			return resp, err
		}
	}
	resp.Properties = props
	return resp, nil
}

func (r *PropertyRepository) markLiked(ctx context.Context, props []models.Property, userID string) error {
	args := []interface{}{userID}
	for _, p := range props {
		args = append(args, p.ID)
	}
	query := `SELECT property_id FROM favorites WHERE user_id = ? AND property_id IN (` + placeholders(len(props)) + `)`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	liked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		liked[id] = true
	}
	for i := range props {
		props[i].Liked = liked[props[i].ID]
	}
	return rows.Err()
}

// Comparables returns price and area for active listings in the same market segment.
func (r *PropertyRepository) Comparables(ctx context.Context, f models.InsightFilter) ([]models.Comparable, error) {
	query := `SELECT id, price, area_m2 FROM properties WHERE status = 'active' AND city = ?`
	args := []interface{}{strings.TrimSpace(f.City)}
	if f.Neighborhood != "" {
		query += " AND neighborhood = ?"
		args = append(args, f.Neighborhood)
	}
	if f.PropertyType != "" {
		query += " AND property_type = ?"
		args = append(args, f.PropertyType)
	}
	if f.Bedrooms > 0 {
		query += " AND bedrooms = ?"
		args = append(args, f.Bedrooms)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Comparable
	for rows.Next() {
		var c models.Comparable
		var area sql.NullFloat64
		if err := rows.Scan(&c.PropertyID, &c.Price, &area); err != nil {
			return nil, err
		}
		c.AreaM2 = nullFloat(area)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PropertyRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Property, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}
