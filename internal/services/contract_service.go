package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/metrics"
	"rentaBack/internal/models"
)

type contractStore interface {
	GetByID(ctx context.Context, id int64) (models.RentalContract, error)
	Transition(ctx context.Context, t models.ContractTransition) error
	ListForUser(ctx context.Context, userID, party, status string) ([]models.ContractView, error)
	ListOverdue(ctx context.Context, cutoff time.Time) ([]models.RentalContract, error)
}

type contractMessageStore interface {
	Add(ctx context.Context, m models.ContractMessage, n *models.Notification) (models.ContractMessage, error)
	List(ctx context.Context, contractID int64) ([]models.ContractMessage, error)
	MarkRead(ctx context.Context, contractID int64, readerID string) (int64, error)
}

// systemSender is the sender id of messages written by background jobs.
const systemSender = "system"

type ContractService struct {
	Contracts  contractStore
	Messages   contractMessageStore
	Properties propertyReader
	Profiles   profileReader
	Notifier   notifier
	Grace      time.Duration
}

// Approve is the tenant's acceptance of the contract as sent by the owner.
func (s *ContractService) Approve(ctx context.Context, tenantID string, contractID int64, disclaimerAccepted bool, expectedVersion int) (models.RentalContract, error) {
	if !disclaimerAccepted {
		return models.RentalContract{}, models.ErrDisclaimerRequired
	}
	return s.Transition(ctx, tenantID, contractID, fsm.ActionApprove, "", expectedVersion, nil)
}

// Transition performs action on behalf of userID. expectedVersion 0 means the
// version currently stored is used; any other value must match it.
func (s *ContractService) Transition(ctx context.Context, userID string, contractID int64, action fsm.Action, note string, expectedVersion int, terms *models.ContractTerms) (models.RentalContract, error) {
	if !fsm.Known(action) {
		return models.RentalContract{}, fmt.Errorf("%w: unknown contract action %q", models.ErrInvalidInput, action)
	}
	c, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return models.RentalContract{}, err
	}
	party := c.Party(userID)
	if party == "" {
		return models.RentalContract{}, models.ErrForbidden
	}
	updated, err := s.move(ctx, c, fsm.Party(party), userID, action, note, expectedVersion, terms)
	metrics.RecordTransition(string(action), err)
	return updated, err
}

func (s *ContractService) move(ctx context.Context, c models.RentalContract, party fsm.Party, actorID string, action fsm.Action, note string, expectedVersion int, terms *models.ContractTerms) (models.RentalContract, error) {
	if !fsm.Allowed(action, party) {
		if action == fsm.ActionApprove {
			return models.RentalContract{}, models.ErrForbidden
		}
		return models.RentalContract{}, fsm.ErrNotAllowed
	}
	to, err := fsm.Next(c.Status, action)
	if err != nil {
		return models.RentalContract{}, err
	}
	if expectedVersion != 0 && expectedVersion != c.Version {
		return models.RentalContract{}, fsm.ErrConcurrentUpdate
	}

	t := models.ContractTransition{
		ContractID: c.ID,
		FromStatus: c.Status,
		ToStatus:   to,
		Version:    c.Version,
	}

	next := c
	if action == fsm.ActionRevise && terms != nil {
		if err := applyTerms(&next, *terms); err != nil {
			return models.RentalContract{}, err
		}
		prop, err := s.Properties.GetByID(ctx, c.PropertyID)
		if err != nil {
			return models.RentalContract{}, err
		}
		if next.Content, err = renderWithProfiles(ctx, s.Profiles, next, prop); err != nil {
			return models.RentalContract{}, err
		}
		t.Terms = &next
	}

	t.Message = &models.ContractMessage{
		ContractID: c.ID,
		SenderID:   actorID,
		Content:    transitionContent(action, note),
		Type:       transitionMessageType(action),
	}
	if party == fsm.PartySystem {
		t.Message.SenderID = systemSender
	}
	t.Notification = transitionNotification(c, party, action, to)

	if err := s.Contracts.Transition(ctx, t); err != nil {
		return models.RentalContract{}, err
	}
	pushAll(ctx, s.Notifier, t.Notification)

	next.Status = to
	next.Version = c.Version + 1
	return next, nil
}

func transitionMessageType(action fsm.Action) string {
	switch action {
	case fsm.ActionApprove:
		return models.MessageTypeApproval
	case fsm.ActionRequestChanges:
		return models.MessageTypeChangeRequest
	case fsm.ActionCancel:
		return models.MessageTypeRejection
	}
	return models.MessageTypeSystem
}

var transitionText = map[fsm.Action]string{
	fsm.ActionSend:           "El propietario envió el contrato para revisión",
	fsm.ActionApprove:        "El arrendatario aprobó el contrato",
	fsm.ActionRequestChanges: "El arrendatario solicitó cambios",
	fsm.ActionRevise:         "El propietario actualizó los términos del contrato",
	fsm.ActionSign:           "El contrato fue firmado",
	fsm.ActionActivate:       "El contrato está activo",
	fsm.ActionCancel:         "El contrato fue cancelado",
	fsm.ActionExpire:         "El contrato venció sin ser activado",
}

func transitionContent(action fsm.Action, note string) string {
	note = strings.TrimSpace(note)
	if note != "" {
		return note
	}
	return transitionText[action]
}

// transitionNotification tells the side that did not act. System moves go to the tenant.
func transitionNotification(c models.RentalContract, party fsm.Party, action fsm.Action, to string) *models.Notification {
	recipient := c.TenantID
	if party == fsm.PartyTenant {
		recipient = c.OwnerID
	}
	kind := models.NotificationContractUpdated
	title := "Contrato actualizado"
	if action == fsm.ActionApprove {
		kind = models.NotificationContractApproved
		title = "Contrato aprobado"
	}
	return &models.Notification{
		UserID: recipient,
		Type:   kind,
		Title:  title,
		Body:   fmt.Sprintf("%s (estado: %s)", transitionText[action], to),
		Link:   fmt.Sprintf("/contracts/%d", c.ID),
	}
}

// Get returns the contract as seen by one of its parties.
func (s *ContractService) Get(ctx context.Context, userID string, id int64) (models.ContractView, error) {
	c, err := s.Contracts.GetByID(ctx, id)
	if err != nil {
		return models.ContractView{}, err
	}
	party := c.Party(userID)
	if party == "" {
		return models.ContractView{}, models.ErrForbidden
	}

	view := models.ContractView{RentalContract: c, Role: party}
	if prop, err := s.Properties.GetByID(ctx, c.PropertyID); err == nil {
		view.Property = summarizeProperty(prop)
	} else if !errors.Is(err, models.ErrPropertyNotFound) {
		return models.ContractView{}, err
	}
	tenant, err := profileOrBlank(ctx, s.Profiles, c.TenantID)
	if err != nil {
		return models.ContractView{}, err
	}
	owner, err := profileOrBlank(ctx, s.Profiles, c.OwnerID)
	if err != nil {
		return models.ContractView{}, err
	}
	view.Tenant = summarizeProfile(tenant)
	view.Owner = summarizeProfile(owner)

	msgs, err := s.Messages.List(ctx, c.ID)
	if err != nil {
		return models.ContractView{}, err
	}
	for _, m := range msgs {
		if !m.IsRead && m.SenderID != userID {
			view.UnreadCount++
		}
	}
	view.AllowedMoves = allowedMoves(c.Status, party)
	return view, nil
}

func (s *ContractService) ListForUser(ctx context.Context, userID, role, status string) ([]models.ContractView, error) {
	if role != models.PartyTenant && role != models.PartyOwner {
		return nil, fmt.Errorf("%w: role must be tenant or owner", models.ErrInvalidInput)
	}
	views, err := s.Contracts.ListForUser(ctx, userID, role, status)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Role = role
		views[i].AllowedMoves = allowedMoves(views[i].Status, role)
	}
	return views, nil
}

func allowedMoves(status, party string) []string {
	moves := []string{}
	for _, a := range fsm.Available(status, fsm.Party(party)) {
		moves = append(moves, string(a))
	}
	return moves
}

func (s *ContractService) participant(ctx context.Context, userID string, contractID int64) (models.RentalContract, error) {
	c, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return models.RentalContract{}, err
	}
	if c.Party(userID) == "" {
		return models.RentalContract{}, models.ErrForbidden
	}
	return c, nil
}

func (s *ContractService) AddComment(ctx context.Context, userID string, contractID int64, content string) (models.ContractMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.ContractMessage{}, fmt.Errorf("%w: message content is required", models.ErrInvalidInput)
	}
	c, err := s.participant(ctx, userID, contractID)
	if err != nil {
		return models.ContractMessage{}, err
	}
	recipient := c.OwnerID
	if userID == c.OwnerID {
		recipient = c.TenantID
	}
	n := &models.Notification{
		UserID: recipient,
		Type:   models.NotificationContractMessage,
		Title:  "Nuevo comentario en el contrato",
		Body:   content,
		Link:   fmt.Sprintf("/contracts/%d", c.ID),
	}
	msg, err := s.Messages.Add(ctx, models.ContractMessage{
		ContractID: c.ID,
		SenderID:   userID,
		Content:    content,
		Type:       models.MessageTypeComment,
	}, n)
	if err != nil {
		return models.ContractMessage{}, err
	}
	pushAll(ctx, s.Notifier, n)
	return msg, nil
}

func (s *ContractService) ListMessages(ctx context.Context, userID string, contractID int64) ([]models.ContractMessage, error) {
	if _, err := s.participant(ctx, userID, contractID); err != nil {
		return nil, err
	}
	return s.Messages.List(ctx, contractID)
}

// MarkMessagesRead marks the messages the other party sent as read.
func (s *ContractService) MarkMessagesRead(ctx context.Context, userID string, contractID int64) (int64, error) {
	if _, err := s.participant(ctx, userID, contractID); err != nil {
		return 0, err
	}
	return s.Messages.MarkRead(ctx, contractID, userID)
}

// ExpireOverdue moves approved or signed contracts whose start date passed
// more than the grace period ago to expired. It returns how many moved.
func (s *ContractService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.Contracts.ListOverdue(ctx, now.Add(-s.Grace))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, c := range overdue {
		_, err := s.move(ctx, c, fsm.PartySystem, "", fsm.ActionExpire, "", 0, nil)
		metrics.RecordTransition(string(fsm.ActionExpire), err)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, fsm.ErrConcurrentUpdate), errors.Is(err, fsm.ErrInvalidTransition):
			// moved by a party meanwhile
		default:
			return expired, err
		}
	}
	return expired, nil
}

func summarizeProperty(p models.Property) models.PropertySummary {
	sum := models.PropertySummary{ID: p.ID, Title: p.Title, Address: p.Address, City: p.City, Price: p.Price}
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			img := img
			sum.ImagePath = &img
			break
		}
	}
	return sum
}

func summarizeProfile(p models.Profile) models.ProfileSummary {
	return models.ProfileSummary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL, Phone: p.Phone}
}
