package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/notify"
	"github.com/lalith-99/factorylink/internal/repository"
	"github.com/lalith-99/factorylink/internal/repository/memory"
	"github.com/lalith-99/factorylink/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	local *notify.LocalNotifier
	a, b  *models.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	local := notify.NewLocalNotifier()
	ctx := context.Background()

	a, err := store.Profiles().Create(ctx, &models.Profile{FullName: "Ana", Email: "a@x.com", Role: models.RoleWorker})
	require.NoError(t, err)
	b, err := store.Profiles().Create(ctx, &models.Profile{FullName: "Bo", Email: "b@x.com", Role: models.RoleWorker})
	require.NoError(t, err)

	svc := New(store.Messages(), store.Profiles(), auth.ContextProvider{}, local, 0, zap.NewNop())
	return &fixture{store: store, svc: svc, local: local, a: a, b: b}
}

func as(p *models.Profile) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{ID: p.ID, Email: p.Email, Role: p.Role})
}

func TestSendReadDeleteScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	before := time.Now().UTC().Add(-time.Millisecond)
	sent, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)
	assert.False(t, sent.Read)
	assert.Nil(t, sent.Subject)
	assert.False(t, sent.CreatedAt.Before(before))

	inbox, err := f.svc.ListInbox(as(f.b), models.InboxQuery{})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, f.a.ID, inbox[0].SenderID)
	assert.Equal(t, "Ana", inbox[0].SenderName)
	assert.Equal(t, "Hello", inbox[0].Content)
	assert.False(t, inbox[0].Read)

	_, err = f.svc.MarkAsRead(as(f.b), sent.ID)
	require.NoError(t, err)

	inbox, err = f.svc.ListInbox(as(f.b), models.InboxQuery{})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].Read)

	require.NoError(t, f.svc.DeleteMessage(as(f.b), sent.ID))

	inbox, err = f.svc.ListInbox(as(f.b), models.InboxQuery{})
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestSendMessage_RecipientNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, email := range []string{"nobody@x.com", "B@x.com", "b@x", " b@x.com"} {
		_, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: email, Content: "Hello"})
		assert.ErrorIs(t, err, apperr.ErrRecipientNotFound, email)
	}
	assert.Zero(t, f.store.Messages().MessageCount())
}

func TestSendMessage_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name  string
		in    SendInput
		field string
	}{
		{name: "no recipient", in: SendInput{Content: "hi"}, field: "recipient_email"},
		{name: "blank content", in: SendInput{RecipientEmail: "b@x.com", Content: "  "}, field: "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(as(f.a), tt.in)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Zero(t, f.store.Messages().MessageCount())
}

func TestSendMessage_Voice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	audio := []byte{0x1a, 0x45, 0xdf, 0xa3, 0x00, 0xff}
	sent, err := f.svc.SendMessage(as(f.a), SendInput{
		RecipientEmail: "b@x.com",
		Subject:        "Line 4",
		Content:        "listen",
		Voice:          audio,
	})
	require.NoError(t, err)

	assert.Equal(t, "[VOICE_MESSAGE]GkXfowD/\n\nlisten", sent.Content)
	require.NotNil(t, sent.Subject)
	assert.Equal(t, "Line 4", *sent.Subject)

	att, err := voice.Decode(sent.Content)
	require.NoError(t, err)
	assert.Equal(t, audio, att.Audio)
	assert.Equal(t, "listen", att.Caption)

	// Voice with no caption is still a valid message.
	_, err = f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Voice: audio})
	assert.NoError(t, err)
}

func TestSendMessage_PublishesEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sub, err := f.local.Subscribe(context.Background(), f.b.ID)
	require.NoError(t, err)
	defer sub.Close()

	sent, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, notify.TypeMessageCreated, ev.Type)
		assert.Equal(t, sent.ID, ev.MessageID)
		assert.Equal(t, "Ana", ev.SenderName)
		assert.False(t, ev.Voice)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, uuid.UUID, notify.Event) error {
	return errors.New("redis down")
}

func TestSendMessage_PublishFailureDoesNotFailSend(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := New(f.store.Messages(), f.store.Profiles(), auth.ContextProvider{}, failingPublisher{}, 0, zap.NewNop())

	_, err := svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Messages().MessageCount())
}

func TestMarkAsRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sent, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)

	t.Run("sender is forbidden", func(t *testing.T) {
		_, err := f.svc.MarkAsRead(as(f.a), sent.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("idempotent for receiver", func(t *testing.T) {
		first, err := f.svc.MarkAsRead(as(f.b), sent.ID)
		require.NoError(t, err)
		assert.True(t, first.Read)

		second, err := f.svc.MarkAsRead(as(f.b), sent.ID)
		require.NoError(t, err)
		assert.True(t, second.Read)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.MarkAsRead(as(f.b), uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDeleteMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	outsider, err := f.store.Profiles().Create(ctx, &models.Profile{FullName: "Cy", Email: "c@x.com", Role: models.RoleWorker})
	require.NoError(t, err)

	sent, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteMessage(as(outsider), sent.ID), apperr.ErrForbidden)
	assert.Equal(t, 1, f.store.Messages().MessageCount())

	assert.ErrorIs(t, f.svc.DeleteMessage(as(f.a), uuid.New()), apperr.ErrNotFound)
	assert.Equal(t, 1, f.store.Messages().MessageCount())

	// Sender may delete too.
	require.NoError(t, f.svc.DeleteMessage(as(f.a), sent.ID))
	assert.ErrorIs(t, f.svc.DeleteMessage(as(f.a), sent.ID), apperr.ErrNotFound)
}

func TestGetMessage_OpensAsRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sent, err := f.svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	require.NoError(t, err)

	bySender, err := f.svc.GetMessage(as(f.a), sent.ID)
	require.NoError(t, err)
	assert.False(t, bySender.Read)

	n, err := f.svc.UnreadCount(as(f.b))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byReceiver, err := f.svc.GetMessage(as(f.b), sent.ID)
	require.NoError(t, err)
	assert.True(t, byReceiver.Read)

	n, err = f.svc.UnreadCount(as(f.b))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUnauthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListInbox(ctx, models.InboxQuery{})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.SendMessage(ctx, SendInput{RecipientEmail: "b@x.com", Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.MarkAsRead(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, uuid.New()), apperr.ErrUnauthenticated)
	_, err = f.svc.UnreadCount(ctx)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

// brokenMessages fails every write.
type brokenMessages struct {
	repository.MessageRepository
}

func (brokenMessages) Create(context.Context, *models.Message) (*models.Message, error) {
	return nil, errors.New("insert message: connection refused")
}

func (brokenMessages) ListInbox(context.Context, uuid.UUID, models.InboxQuery) ([]models.InboxMessage, error) {
	return nil, errors.New("list inbox: connection refused")
}

func TestPersistenceErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := New(brokenMessages{}, f.store.Profiles(), auth.ContextProvider{}, nil, 0, zap.NewNop())

	_, err := svc.SendMessage(as(f.a), SendInput{RecipientEmail: "b@x.com", Content: "Hello"})
	assert.ErrorIs(t, err, apperr.ErrPersistence)

	_, err = svc.ListInbox(as(f.b), models.InboxQuery{})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

type recordingMessages struct {
	repository.MessageRepository
	got models.InboxQuery
}

func (r *recordingMessages) ListInbox(_ context.Context, _ uuid.UUID, q models.InboxQuery) ([]models.InboxMessage, error) {
	r.got = q
	return []models.InboxMessage{}, nil
}

func TestListInbox_PageSize(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	rec := &recordingMessages{}
	svc := New(rec, f.store.Profiles(), auth.ContextProvider{}, nil, 20, zap.NewNop())

	_, err := svc.ListInbox(as(f.b), models.InboxQuery{})
	require.NoError(t, err)
	assert.Equal(t, 20, rec.got.Limit)

	_, err = svc.ListInbox(as(f.b), models.InboxQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, rec.got.Limit)
}
