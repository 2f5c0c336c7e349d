package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
	"rentaBack/internal/services"
	"rentaBack/internal/session"
	"rentaBack/internal/wompi"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fsm.ErrConcurrentUpdate, http.StatusConflict},
		{fmt.Errorf("approve: %w", fsm.ErrInvalidTransition), http.StatusConflict},
		{models.ErrDuplicateRequest, http.StatusConflict},
		{models.ErrPropertyUnavailable, http.StatusConflict},
		{fsm.ErrNotAllowed, http.StatusForbidden},
		{models.ErrProRequired, http.StatusForbidden},
		{models.ErrKYCRequired, http.StatusForbidden},
		{models.ErrContractNotFound, http.StatusNotFound},
		{models.ErrSubscriptionNotFound, http.StatusNotFound},
		{models.ErrDisclaimerRequired, http.StatusBadRequest},
		{fmt.Errorf("%w: rating", models.ErrInvalidInput), http.StatusBadRequest},
		{&mysql.MySQLError{Number: 1452}, http.StatusBadRequest},
		{wompi.ErrMalformedEvent, http.StatusBadRequest},
		{wompi.ErrInvalidSignature, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, nil, errors.New("dial tcp 10.0.0.1:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestCurrentSessionRequiresLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	h := &ContractHandler{}
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/contracts/1?:id=1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/kyc", nil)
	r = r.WithContext(session.NewContext(r.Context(), session.Session{UserID: "u1", Role: models.RoleUser}))
	rec := httptest.NewRecorder()

	_, ok := requireAdmin(rec, r)
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransitionRejectsReservedActions(t *testing.T) {
	for _, action := range []string{"approve", "expire"} {
		r := httptest.NewRequest(http.MethodPost, "/contracts/7/"+action+"?:id=7&:action="+action, nil)
		r = r.WithContext(session.NewContext(r.Context(), session.Session{UserID: "tenant-1"}))
		rec := httptest.NewRecorder()

		(&ContractHandler{}).Transition(rec, r)
		assert.Equal(t, http.StatusForbidden, rec.Code, action)
	}
}

func TestTransitionRejectsUnknownAction(t *testing.T) {
	for _, action := range []string{"foo", "reject", ""} {
		r := httptest.NewRequest(http.MethodPost, "/contracts/7/x?:id=7&:action="+action, nil)
		r = r.WithContext(session.NewContext(r.Context(), session.Session{UserID: "tenant-1"}))
		rec := httptest.NewRecorder()

		(&ContractHandler{}).Transition(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code, action)
	}
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/properties/12?:id=12&limit=x&lat=4.6", nil)
	id, err := idParam(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, 20, queryInt(r, "limit", 20))
	assert.InDelta(t, 4.6, queryFloat(r, "lat"), 1e-9)

	_, err = idParam(httptest.NewRequest(http.MethodGet, "/properties/abc?:id=abc", nil), "id")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	d, err := parseDate("2026-11-01")
	require.NoError(t, err)
	assert.Equal(t, 11, int(d.Month()))
	d, err = parseDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)
	_, err = parseDate("01/11/2026")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

type fakeProcessor struct {
	res services.WebhookResult
	err error
	raw string
}

func (f *fakeProcessor) Handle(_ context.Context, raw []byte, _ http.Header) (services.WebhookResult, error) {
	f.raw = string(raw)
	return f.res, f.err
}

func TestWompiWebhook(t *testing.T) {
	cases := []struct {
		name    string
		proc    *fakeProcessor
		status  int
		success bool
		message string
	}{
		{"applied", &fakeProcessor{res: services.WebhookResult{Message: "subscription activated"}}, http.StatusOK, true, "subscription activated"},
		{"replay", &fakeProcessor{res: services.WebhookResult{Message: "event already processed"}}, http.StatusOK, true, "event already processed"},
		{"bad signature", &fakeProcessor{err: wompi.ErrInvalidSignature}, http.StatusUnauthorized, false, wompi.ErrInvalidSignature.Error()},
		{"unknown transaction", &fakeProcessor{err: models.ErrSubscriptionNotFound}, http.StatusNotFound, false, models.ErrSubscriptionNotFound.Error()},
		{"malformed", &fakeProcessor{err: wompi.ErrMalformedEvent}, http.StatusBadRequest, false, wompi.ErrMalformedEvent.Error()},
		{"storage", &fakeProcessor{err: errors.New("deadlock")}, http.StatusInternalServerError, false, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &WebhookHandler{Service: tc.proc}
			rec := httptest.NewRecorder()
			h.Wompi(rec, httptest.NewRequest(http.MethodPost, "/webhooks/wompi", strings.NewReader(`{"event":"transaction.updated"}`)))

			assert.Equal(t, tc.status, rec.Code)
			var body webhookResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.success, body.Success)
			assert.Equal(t, tc.message, body.Message)
			assert.Equal(t, `{"event":"transaction.updated"}`, tc.proc.raw)
		})
	}
}
