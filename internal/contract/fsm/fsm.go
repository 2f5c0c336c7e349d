package fsm

import (
	"context"
	"database/sql"
	"errors"
)

// Status constants shared by contract requests and rental contracts.
const (
	StatusDraft         = "draft"
	StatusPendingTenant = "pending_tenant"
	StatusPendingOwner  = "pending_owner"
	StatusApproved      = "approved"
	StatusSigned        = "signed"
	StatusActive        = "active"
	StatusCancelled     = "cancelled"
	StatusExpired       = "expired"
	StatusPending       = "pending"
	StatusRejected      = "rejected"
)

// Action is a named move a party can make on a contract or request.
type Action string

const (
	ActionSend           Action = "send"
	ActionApprove        Action = "approve"
	ActionRequestChanges Action = "request_changes"
	ActionRevise         Action = "revise"
	ActionSign           Action = "sign"
	ActionActivate       Action = "activate"
	ActionCancel         Action = "cancel"
	ActionExpire         Action = "expire"
	ActionReject         Action = "reject"
)

// Party identifies who is performing an action.
type Party string

const (
	PartyTenant Party = "tenant"
	PartyOwner  Party = "owner"
	PartySystem Party = "system"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAllowed        = errors.New("action not allowed for this party")
	ErrConcurrentUpdate  = errors.New("contract was modified concurrently")
)

type key struct {
	from   string
	action Action
}

var contractTransitions = map[key]string{
	{StatusDraft, ActionSend}:   StatusPendingTenant,
	{StatusDraft, ActionCancel}: StatusCancelled,

	{StatusPendingTenant, ActionApprove}:        StatusApproved,
	{StatusPendingTenant, ActionRequestChanges}: StatusPendingOwner,
	{StatusPendingTenant, ActionCancel}:         StatusCancelled,

	{StatusPendingOwner, ActionRevise}: StatusPendingTenant,
	{StatusPendingOwner, ActionCancel}: StatusCancelled,

	{StatusApproved, ActionSign}:   StatusSigned,
	{StatusApproved, ActionCancel}: StatusCancelled,
	{StatusApproved, ActionExpire}: StatusExpired,

	{StatusSigned, ActionActivate}: StatusActive,
	{StatusSigned, ActionCancel}:   StatusCancelled,
	{StatusSigned, ActionExpire}:   StatusExpired,
}

var requestTransitions = map[key]string{
	{StatusPending, ActionApprove}: StatusApproved,
	{StatusPending, ActionReject}:  StatusRejected,
}

var actors = map[Action]map[Party]struct{}{
	ActionSend:           {PartyOwner: {}},
	ActionApprove:        {PartyTenant: {}},
	ActionRequestChanges: {PartyTenant: {}},
	ActionRevise:         {PartyOwner: {}},
	ActionSign:           {PartyOwner: {}},
	ActionActivate:       {PartyOwner: {}, PartySystem: {}},
	ActionCancel:         {PartyTenant: {}, PartyOwner: {}},
	ActionExpire:         {PartySystem: {}},
}

// Next returns the contract status reached by applying action in status from.
func Next(from string, action Action) (string, error) {
	to, ok := contractTransitions[key{from, action}]
	if !ok {
		return "", ErrInvalidTransition
	}
	return to, nil
}

// NextRequest returns the contract request status reached by applying action.
// Only the property owner decides on requests, so no party table is consulted.
func NextRequest(from string, action Action) (string, error) {
	to, ok := requestTransitions[key{from, action}]
	if !ok {
		return "", ErrInvalidTransition
	}
	return to, nil
}

// CanTransition reports whether any action moves a contract from one status to another.
func CanTransition(from, to string) bool {
	for k, next := range contractTransitions {
		if k.from == from && next == to {
			return true
		}
	}
	return false
}

// Known reports whether action is part of the contract vocabulary.
func Known(action Action) bool {
	_, ok := actors[action]
	return ok
}

// Allowed reports whether party may perform action on a contract.
func Allowed(action Action, party Party) bool {
	parties, ok := actors[action]
	if !ok {
		return false
	}
	_, ok = parties[party]
	return ok
}

var actionOrder = []Action{ActionSend, ActionApprove, ActionRequestChanges, ActionRevise, ActionSign, ActionActivate, ActionCancel, ActionExpire}

// Available lists the actions party may perform on a contract in status from.
func Available(from string, party Party) []Action {
	out := []Action{}
	for _, a := range actionOrder {
		if _, ok := contractTransitions[key{from, a}]; ok && Allowed(a, party) {
			out = append(out, a)
		}
	}
	return out
}

// IsTerminal reports whether no action leaves the status.
func IsTerminal(status string) bool {
	switch status {
	case StatusActive, StatusCancelled, StatusExpired, StatusRejected:
		return true
	}
	return false
}

// Apply moves a contract to a new status with a compare-and-swap on status and version.
func Apply(ctx context.Context, tx *sql.Tx, contractID int64, fromStatus, toStatus string, version int) error {
	if !CanTransition(fromStatus, toStatus) {
		return ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE rental_contracts SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ? AND version = ?`,
		toStatus, contractID, fromStatus, version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// ApplyRequest moves a contract request to a new status if it is still in fromStatus.
func ApplyRequest(ctx context.Context, tx *sql.Tx, requestID int64, fromStatus, toStatus string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE contract_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		toStatus, requestID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}
