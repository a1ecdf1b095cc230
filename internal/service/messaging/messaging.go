// Package messaging moves direct messages between profiles and manages
// their read and delete lifecycle. The caller is always re-derived from
// the request context; no operation accepts a caller id as input.
package messaging

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/notify"
	"github.com/lalith-99/factorylink/internal/repository"
	"github.com/lalith-99/factorylink/internal/voice"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type Service struct {
	messages  repository.MessageRepository
	profiles  repository.ProfileRepository
	identity  auth.Provider
	publisher notify.Publisher
	pageSize  int
	logger    *zap.Logger
}

// New builds the service. publisher may be nil, in which case no events
// are emitted.
func New(
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	identity auth.Provider,
	publisher notify.Publisher,
	pageSize int,
	logger *zap.Logger,
) *Service {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &Service{
		messages:  messages,
		profiles:  profiles,
		identity:  identity,
		publisher: publisher,
		pageSize:  pageSize,
		logger:    logger.With(zap.String("service", "messaging")),
	}
}

// SendInput is a composed message. Voice, when non-empty, is raw audio
// embedded into the stored content ahead of the typed text.
type SendInput struct {
	RecipientEmail string
	Subject        string
	Content        string
	Voice          []byte
}

func (s *Service) caller(ctx context.Context) (auth.Identity, error) {
	id, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return auth.Identity{}, apperr.ErrUnauthenticated
	}
	return id, nil
}

// ListInbox returns the caller's received messages, newest first.
func (s *Service) ListInbox(ctx context.Context, q models.InboxQuery) ([]models.InboxMessage, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case q.Limit <= 0:
		q.Limit = s.pageSize
	case q.Limit > MaxPageSize:
		q.Limit = MaxPageSize
	}

	msgs, err := s.messages.ListInbox(ctx, caller.ID, q)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return msgs, nil
}

// SendMessage resolves the recipient by exact email and stores one new
// unread message. A lookup miss fails with apperr.ErrRecipientNotFound
// before anything is written.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (*models.Message, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if in.RecipientEmail == "" {
		return nil, apperr.Validation("recipient_email", "is required")
	}
	if len(in.Voice) == 0 && strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("content", "is required")
	}

	recipient, err := s.profiles.GetByEmail(ctx, in.RecipientEmail)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if recipient == nil {
		return nil, apperr.ErrRecipientNotFound
	}

	content := in.Content
	if len(in.Voice) > 0 {
		content = voice.Encode(in.Voice, in.Content)
	}

	var subject *string
	if strings.TrimSpace(in.Subject) != "" {
		subject = &in.Subject
	}

	msg, err := s.messages.Create(ctx, &models.Message{
		SenderID:   caller.ID,
		ReceiverID: recipient.ID,
		Subject:    subject,
		Content:    content,
	})
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	s.publishCreated(ctx, caller, msg)
	return msg, nil
}

// publishCreated tells the receiver's open streams about msg. Failures
// are logged only; the message is already stored.
func (s *Service) publishCreated(ctx context.Context, sender auth.Identity, msg *models.Message) {
	if s.publisher == nil {
		return
	}

	name := sender.Email
	if p, err := s.profiles.GetByID(ctx, sender.ID); err == nil && p != nil {
		name = p.FullName
	}

	ev := notify.Event{
		Type:       notify.TypeMessageCreated,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		SenderName: name,
		Subject:    msg.Subject,
		Voice:      voice.IsVoice(msg.Content),
		CreatedAt:  msg.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, msg.ReceiverID, ev); err != nil {
		s.logger.Warn("publish message event",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}
}

// load fetches a message the caller is allowed to touch. Missing
// messages fail with ErrNotFound before any ownership check.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if msg == nil {
		return nil, apperr.ErrNotFound
	}
	return msg, nil
}

// MarkAsRead sets read=true on a message the caller received. Marking an
// already read message again succeeds.
func (s *Service) MarkAsRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != caller.ID {
		return nil, apperr.ErrForbidden
	}

	return s.markRead(ctx, id)
}

func (s *Service) markRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	updated, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if updated == nil {
		// Deleted between the lookup and the update.
		return nil, apperr.ErrNotFound
	}
	return updated, nil
}

// DeleteMessage hard-deletes a message the caller sent or received.
func (s *Service) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return err
	}

	msg, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != caller.ID && msg.ReceiverID != caller.ID {
		return apperr.ErrForbidden
	}

	deleted, err := s.messages.Delete(ctx, id)
	if err != nil {
		return apperr.Persistence(err)
	}
	if !deleted {
		return apperr.ErrNotFound
	}

	s.logger.Debug("message deleted",
		zap.String("message_id", id.String()),
		zap.String("caller_id", caller.ID.String()),
	)
	return nil
}

// GetMessage returns one message to its sender or receiver. The receiver
// opening an unread message marks it read.
func (s *Service) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != caller.ID && msg.ReceiverID != caller.ID {
		return nil, apperr.ErrForbidden
	}

	if msg.ReceiverID == caller.ID && !msg.Read {
		return s.markRead(ctx, id)
	}
	return msg, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.messages.CountUnread(ctx, caller.ID)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
