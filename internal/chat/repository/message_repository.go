package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chat_backend_service/internal/chat/domain"
)

const messageColumns = "id, time_posted, source_user, chat_id, chat_index, content, is_read"

// MessageRepository is the backing store for posted messages. Each call wraps
// one transaction; absence surfaces as domain.ErrMessageNotFound.
type MessageRepository interface {
	// NextMessageID returns the next unassigned global message id. Read once
	// at manager construction to seed the in-memory counter.
	NextMessageID(ctx context.Context) (int64, error)
	// InsertBatch persists messages in one transaction with upsert semantics:
	// an id conflict overwrites the stored row (covers read-flag updates).
	InsertBatch(ctx context.Context, messages []domain.PostedMessage) error
	FindByID(ctx context.Context, id int64) (*domain.PostedMessage, error)
	FindByChatIndex(ctx context.Context, chatID, chatIndex int64) (*domain.PostedMessage, error)
	// FindRange returns the messages of a chat with chat_index in
	// [fromIndex, toIndex], ascending.
	FindRange(ctx context.Context, chatID, fromIndex, toIndex int64) ([]domain.PostedMessage, error)
	CountByChat(ctx context.Context, chatID int64) (int64, error)
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) NextMessageID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRow(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM messages").Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("read next message id: %w", err)
	}
	return next, nil
}

func (r *messageRepository) InsertBatch(ctx context.Context, messages []domain.PostedMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin message batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, msg := range messages {
		batch.Queue(
			`INSERT INTO messages(id, time_posted, source_user, chat_id, chat_index, content, is_read)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				time_posted = EXCLUDED.time_posted,
				source_user = EXCLUDED.source_user,
				chat_id     = EXCLUDED.chat_id,
				chat_index  = EXCLUDED.chat_index,
				content     = EXCLUDED.content,
				is_read     = EXCLUDED.is_read`,
			msg.ID, msg.TimePosted, msg.SourceUser, msg.ChatID, msg.ChatIndex, msg.Content, msg.IsRead,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range messages {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert message batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close message batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) FindByID(ctx context.Context, id int64) (*domain.PostedMessage, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = $1", id)
	return scanMessage(row)
}

func (r *messageRepository) FindByChatIndex(ctx context.Context, chatID, chatIndex int64) (*domain.PostedMessage, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = $1 AND chat_index = $2",
		chatID, chatIndex)
	return scanMessage(row)
}

func (r *messageRepository) FindRange(ctx context.Context, chatID, fromIndex, toIndex int64) ([]domain.PostedMessage, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+messageColumns+` FROM messages
		 WHERE chat_id = $1 AND chat_index BETWEEN $2 AND $3
		 ORDER BY chat_index ASC`,
		chatID, fromIndex, toIndex)
	if err != nil {
		return nil, fmt.Errorf("query message range: %w", err)
	}
	defer rows.Close()

	var messages []domain.PostedMessage
	for rows.Next() {
		var msg domain.PostedMessage
		if err := rows.Scan(&msg.ID, &msg.TimePosted, &msg.SourceUser, &msg.ChatID,
			&msg.ChatIndex, &msg.Content, &msg.IsRead); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) CountByChat(ctx context.Context, chatID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM messages WHERE chat_id = $1", chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chat messages: %w", err)
	}
	return count, nil
}

func scanMessage(row pgx.Row) (*domain.PostedMessage, error) {
	var msg domain.PostedMessage
	err := row.Scan(&msg.ID, &msg.TimePosted, &msg.SourceUser, &msg.ChatID,
		&msg.ChatIndex, &msg.Content, &msg.IsRead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &msg, nil
}
