package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/factorylink/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, subject, content, read, conversation_id, created_at`

type MessageStore struct {
	db Querier
}

func NewMessageStore(db Querier) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	// id, read and created_at come from column defaults.
	query := `
		INSERT INTO messages (sender_id, receiver_id, subject, content, conversation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + messageColumns

	msg, err := scanMessage(s.db.QueryRow(ctx, query,
		m.SenderID, m.ReceiverID, m.Subject, m.Content, m.ConversationID,
	))
	if err != nil {
		return nil, mapError(err, "insert message")
	}
	return msg, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	msg, err := scanMessage(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "get message")
	}
	return msg, nil
}

func (s *MessageStore) ListInbox(ctx context.Context, receiverID uuid.UUID, q models.InboxQuery) ([]models.InboxMessage, error) {
	b := psql.Select(
		"m.id", "m.sender_id", "m.receiver_id", "m.subject", "m.content",
		"m.read", "m.conversation_id", "m.created_at",
		"COALESCE(p.full_name, '')",
	).
		From("messages m").
		LeftJoin("profiles p ON p.id = m.sender_id").
		Where("m.receiver_id = ?", receiverID)

	if q.UnreadOnly {
		b = b.Where(sq.Eq{"m.read": false})
	}

	// Keyset pagination over (created_at DESC, id ASC): the next page holds
	// strictly older rows, or rows with the same timestamp and a larger id.
	// uuid.UUID is an array type, so it goes through sq.Expr rather than
	// sq.Eq, which would expand it into an IN list.
	if q.After != nil {
		b = b.Where(sq.Expr(
			"(m.created_at < ? OR (m.created_at = ? AND m.id > ?))",
			q.After.CreatedAt, q.After.CreatedAt, q.After.ID,
		))
	}

	b = b.OrderBy("m.created_at DESC", "m.id ASC")
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, mapError(err, "build inbox query")
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list inbox")
	}
	defer rows.Close()

	messages := make([]models.InboxMessage, 0)
	for rows.Next() {
		var im models.InboxMessage
		if err := rows.Scan(
			&im.ID,
			&im.SenderID,
			&im.ReceiverID,
			&im.Subject,
			&im.Content,
			&im.Read,
			&im.ConversationID,
			&im.CreatedAt,
			&im.SenderName,
		); err != nil {
			return nil, mapError(err, "scan inbox message")
		}
		messages = append(messages, im)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate inbox")
	}

	return messages, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	query := `
		UPDATE messages SET read = true
		WHERE id = $1
		RETURNING ` + messageColumns

	msg, err := scanMessage(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "mark message read")
	}
	return msg, nil
}

func (s *MessageStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err, "delete message")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MessageStore) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM messages WHERE receiver_id = $1 AND NOT read`

	var n int64
	if err := s.db.QueryRow(ctx, query, receiverID).Scan(&n); err != nil {
		return 0, mapError(err, "count unread messages")
	}
	return int(n), nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Subject,
		&msg.Content,
		&msg.Read,
		&msg.ConversationID,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
