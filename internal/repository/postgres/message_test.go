package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/models"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var messageCols = []string{"id", "sender_id", "receiver_id", "subject", "content", "read", "conversation_id", "created_at"}

var inboxCols = append(append([]string{}, messageCols...), "sender_name")

func TestMessageStore_Create(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := NewMessageStore(mock)

	id, sender, receiver := uuid.New(), uuid.New(), uuid.New()
	subject := "Shift"
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs(sender, receiver, &subject, "Hello", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(messageCols).
			AddRow(id, sender, receiver, &subject, "Hello", false, nil, now))

	got, err := store.Create(context.Background(), &models.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Subject:    &subject,
		Content:    "Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.False(t, got.Read)
	assert.Equal(t, "Shift", *got.Subject)
	assert.Nil(t, got.ConversationID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestMessageStore_CreateUnknownReceiver(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := NewMessageStore(mock)

	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "messages_receiver_id_fkey"})

	_, err := store.Create(context.Background(), &models.Message{SenderID: uuid.New(), ReceiverID: uuid.New(), Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMessageStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM messages WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(messageCols).
				AddRow(id, uuid.New(), uuid.New(), nil, "hi", true, nil, time.Now()))

		got, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Nil(t, got.Subject)
		assert.True(t, got.Read)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)

		mock.ExpectQuery(`SELECT (.+) FROM messages`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		got, err := store.GetByID(context.Background(), uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMessageStore_ListInbox(t *testing.T) {
	t.Parallel()

	receiver := uuid.New()
	now := time.Now()

	t.Run("first page", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)

		a, b := uuid.New(), uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN profiles p ON p.id = m.sender_id WHERE m.receiver_id = $1 ORDER BY m.created_at DESC, m.id ASC LIMIT 50`)).
			WithArgs(receiver).
			WillReturnRows(pgxmock.NewRows(inboxCols).
				AddRow(a, uuid.New(), receiver, nil, "newer", false, nil, now, "Ana").
				AddRow(b, uuid.New(), receiver, nil, "older", true, nil, now.Add(-time.Minute), ""))

		got, err := store.ListInbox(context.Background(), receiver, models.InboxQuery{Limit: 50})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a, got[0].ID)
		assert.Equal(t, "Ana", got[0].SenderName)
		assert.Equal(t, "", got[1].SenderName)
	})

	t.Run("unread after cursor", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)

		cursor := models.InboxCursor{CreatedAt: now, ID: uuid.New()}
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE m.receiver_id = $1 AND m.read = $2 AND (m.created_at < $3 OR (m.created_at = $4 AND m.id > $5))`)).
			WithArgs(receiver, false, cursor.CreatedAt, cursor.CreatedAt, cursor.ID).
			WillReturnRows(pgxmock.NewRows(inboxCols))

		got, err := store.ListInbox(context.Background(), receiver, models.InboxQuery{
			Limit:      10,
			After:      &cursor,
			UnreadOnly: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestMessageStore_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)
		id := uuid.New()

		mock.ExpectQuery(`UPDATE messages SET read = true`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(messageCols).
				AddRow(id, uuid.New(), uuid.New(), nil, "hi", true, nil, time.Now()))

		got, err := store.MarkRead(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, got.Read)
	})

	t.Run("gone", func(t *testing.T) {
		mock := newMock(t)
		store := NewMessageStore(mock)

		mock.ExpectQuery(`UPDATE messages`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		got, err := store.MarkRead(context.Background(), uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMessageStore_Delete(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := NewMessageStore(mock)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM messages WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM messages`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := store.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMessageStore_CountUnread(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	store := NewMessageStore(mock)
	receiver := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM messages`).
		WithArgs(receiver).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := store.CountUnread(context.Background(), receiver)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
