package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/models"
)

type fakeKYCStore struct {
	rows      map[int64]models.KYCVerification
	reviewed  []models.KYCVerification
	submitted []models.KYCVerification
}

func (f *fakeKYCStore) Submit(_ context.Context, k models.KYCVerification) (models.KYCVerification, error) {
	k.ID = int64(len(f.rows) + 1)
	f.rows[k.ID] = k
	f.submitted = append(f.submitted, k)
	return k, nil
}

func (f *fakeKYCStore) GetByID(_ context.Context, id int64) (models.KYCVerification, error) {
	k, ok := f.rows[id]
	if !ok {
		return models.KYCVerification{}, models.ErrNoRecord
	}
	return k, nil
}

func (f *fakeKYCStore) Latest(context.Context, string) (models.KYCVerification, error) {
	return models.KYCVerification{}, models.ErrNoRecord
}

func (f *fakeKYCStore) HasValid(context.Context, string, time.Time) (bool, error) { return false, nil }

func (f *fakeKYCStore) Review(_ context.Context, id int64, status, notes string, verifiedAt, expiresAt *time.Time) error {
	k := f.rows[id]
	k.Status, k.Notes, k.VerifiedAt, k.ExpiresAt = status, notes, verifiedAt, expiresAt
	f.rows[id] = k
	f.reviewed = append(f.reviewed, k)
	return nil
}

func (f *fakeKYCStore) ListPending(context.Context) ([]models.KYCVerification, error) { return nil, nil }

func TestKYCSubmitValidatesDocument(t *testing.T) {
	store := &fakeKYCStore{rows: map[int64]models.KYCVerification{}}
	svc := &KYCService{Repo: store, Now: clock}

	_, err := svc.Submit(context.Background(), "u1", "library_card", "123")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	k, err := svc.Submit(context.Background(), "u1", " cc ", " 1020304050 ")
	require.NoError(t, err)
	assert.Equal(t, "CC", k.DocumentType)
	assert.Equal(t, "1020304050", k.DocumentNumber)
	assert.Equal(t, models.KYCStatusPending, k.Status)
}

func TestKYCApprovalExpiresInAYear(t *testing.T) {
	store := &fakeKYCStore{rows: map[int64]models.KYCVerification{1: {ID: 1, UserID: "u1", Status: models.KYCStatusPending}}}
	n := &fakeNotifier{}
	svc := &KYCService{Repo: store, Notifier: n, Now: clock}

	k, err := svc.Review(context.Background(), 1, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusVerified, k.Status)
	require.NotNil(t, k.ExpiresAt)
	assert.Equal(t, fixedNow.Add(365*24*time.Hour), *k.ExpiresAt)
	assert.True(t, k.Valid(fixedNow))
	require.Len(t, n.notified, 1)

	_, err = svc.Review(context.Background(), 1, false, "again")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestKYCStatusWithoutRecord(t *testing.T) {
	svc := &KYCService{Repo: &fakeKYCStore{}, Now: clock}
	k, valid, err := svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, k)
	assert.False(t, valid)
}

func TestKYCReviewLogsNotifyFailure(t *testing.T) {
	store := &fakeKYCStore{rows: map[int64]models.KYCVerification{1: {ID: 1, UserID: "u1", Status: models.KYCStatusPending}}}
	var buf bytes.Buffer
	svc := &KYCService{
		Repo:     store,
		Notifier: &fakeNotifier{err: errors.New("notifications table locked")},
		ErrorLog: log.New(&buf, "", 0),
		Now:      clock,
	}

	k, err := svc.Review(context.Background(), 1, false, "blurry photo")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusRejected, k.Status)
	require.Len(t, store.reviewed, 1)
	assert.Contains(t, buf.String(), "kyc review 1")
	assert.Contains(t, buf.String(), "notifications table locked")
}
