package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-sql-driver/mysql"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/geo"
	"rentaBack/internal/models"
	"rentaBack/internal/session"
	"rentaBack/internal/wompi"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code. Unexpected errors are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, errorLog *log.Logger, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if errorLog != nil {
			errorLog.Output(2, err.Error())
		}
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, fsm.ErrConcurrentUpdate),
		errors.Is(err, fsm.ErrInvalidTransition),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrAlreadyReviewed),
		errors.Is(err, models.ErrPropertyUnavailable):
		return http.StatusConflict
	case errors.Is(err, fsm.ErrNotAllowed),
		errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrProRequired),
		errors.Is(err, models.ErrKYCRequired):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNoRecord),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPropertyNotFound),
		errors.Is(err, models.ErrContractNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrSubscriptionNotFound),
		errors.Is(err, models.ErrConversationNotFound),
		errors.Is(err, models.ErrReviewNotFound),
		errors.Is(err, geo.ErrLocationUnavailable):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrDisclaimerRequired),
		errors.Is(err, models.ErrOwnPropertyRequest),
		errors.Is(err, models.ErrUnknownPlan),
		errors.Is(err, wompi.ErrMalformedEvent),
		isForeignKeyConstraintError(err):
		return http.StatusBadRequest
	case errors.Is(err, wompi.ErrInvalidSignature),
		errors.Is(err, session.ErrMissingToken),
		errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func isForeignKeyConstraintError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}

// currentSession returns the caller's session or answers 401.
func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok || s.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authorized"})
		return session.Session{}, false
	}
	return s, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, ok := currentSession(w, r)
	if !ok {
		return s, false
	}
	if !s.IsAdmin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": models.ErrForbidden.Error()})
		return s, false
	}
	return s, true
}

// optionalUserID is the caller's id on public routes, or "" for anonymous visitors.
func optionalUserID(r *http.Request) string {
	if s, ok := session.FromContext(r.Context()); ok {
		return s.UserID
	}
	return ""
}
