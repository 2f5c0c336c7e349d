package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/models"
)

func TestFavoriteAddIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &FavoriteRepository{DB: db}

	mock.ExpectExec(`INSERT INTO favorites`).WithArgs("user-1", int64(3)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO favorites`).WithArgs("user-1", int64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	require.NoError(t, repo.Add(context.Background(), "user-1", 3))
	require.NoError(t, repo.Add(context.Background(), "user-1", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteAddMissingProperty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &FavoriteRepository{DB: db}

	mock.ExpectExec(`INSERT INTO favorites`).WillReturnError(&mysql.MySQLError{Number: 1452})
	assert.ErrorIs(t, repo.Add(context.Background(), "user-1", 404), models.ErrPropertyNotFound)
}

func TestFavoriteListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &FavoriteRepository{DB: db}

	rows := sqlmock.NewRows([]string{"id", "user_id", "property_id", "created_at", "title", "address", "city", "price", "images"}).
		AddRow(int64(1), "user-1", int64(3), time.Now(), "Apto Chapinero", "Calle 45 # 12-34", "Bogotá", 1800000.0, `["a.jpg","b.jpg"]`)
	mock.ExpectQuery(`FROM favorites f\s+JOIN properties p`).WithArgs("user-1").WillReturnRows(rows)

	favs, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NotNil(t, favs[0].Property)
	assert.Equal(t, "Apto Chapinero", favs[0].Property.Title)
	require.NotNil(t, favs[0].Property.ImagePath)
	assert.Equal(t, "a.jpg", *favs[0].Property.ImagePath)
}

func TestReviewDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &ReviewRepository{DB: db}

	mock.ExpectExec(`INSERT INTO reviews`).
		WithArgs(int64(3), "user-1", 5, "great").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-user-1' for key 'uq_reviews'"})

	_, err = repo.Create(context.Background(), models.Review{PropertyID: 3, UserID: "user-1", Rating: 5, Comment: "great"})
	require.ErrorIs(t, err, models.ErrAlreadyReviewed)
	assert.Equal(t, "you have already reviewed this property", err.Error())
}

func TestReviewListAverages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &ReviewRepository{DB: db}

	rows := sqlmock.NewRows([]string{"id", "property_id", "user_id", "rating", "comment", "created_at", "full_name"}).
		AddRow(int64(1), int64(3), "u1", 5, "a", time.Now(), "Ana").
		AddRow(int64(2), int64(3), "u2", 4, "b", time.Now(), "Luis")
	mock.ExpectQuery(`FROM reviews r`).WithArgs(int64(3)).WillReturnRows(rows)

	out, err := repo.ListByProperty(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.InDelta(t, 4.5, out.AvgRating, 1e-9)
}
