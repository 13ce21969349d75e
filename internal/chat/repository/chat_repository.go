package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"chat_backend_service/internal/chat/domain"
)

// ChatRepository is the backing store for chats and their participant lists.
type ChatRepository interface {
	CreateChat(ctx context.Context, creator string, updateTime time.Time) (int64, error)
	// TouchChat bumps the chat's update time, used for ordering a user's
	// chat list by recent activity.
	TouchChat(ctx context.Context, chatID int64, updateTime time.Time) error
	AddParticipant(ctx context.Context, chatID int64, username string) error
	RemoveParticipant(ctx context.Context, chatID int64, username string) (int64, error)
	IsParticipant(ctx context.Context, chatID int64, username string) (bool, error)
	Participants(ctx context.Context, chatID int64) ([]string, error)
	// ChatsByUser lists chat ids for a user ordered by chat update time,
	// with the SelectAll / SelectLast / offset pagination conventions.
	ChatsByUser(ctx context.Context, username string, startPoint, count int64) ([]int64, error)
}

type chatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository create a ChatRepository
func NewChatRepository(db *pgxpool.Pool) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateChat(ctx context.Context, creator string, updateTime time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO chats(creator, time_updated) VALUES ($1, $2) RETURNING id",
		creator, updateTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create chat: %w", err)
	}
	return id, nil
}

func (r *chatRepository) TouchChat(ctx context.Context, chatID int64, updateTime time.Time) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE chats SET time_updated = $1 WHERE id = $2", updateTime, chatID)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, chatID int64, username string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO chat_participants(chat_id, username) VALUES ($1, $2)",
		chatID, username)
	if err != nil {
		return fmt.Errorf("add chat participant: %w", err)
	}
	return nil
}

func (r *chatRepository) RemoveParticipant(ctx context.Context, chatID int64, username string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM chat_participants WHERE chat_id = $1 AND username = $2",
		chatID, username)
	if err != nil {
		return 0, fmt.Errorf("remove chat participant: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *chatRepository) IsParticipant(ctx context.Context, chatID int64, username string) (bool, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM chat_participants WHERE chat_id = $1 AND username = $2",
		chatID, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check chat participant: %w", err)
	}
	return count > 0, nil
}

func (r *chatRepository) Participants(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT username FROM chat_participants WHERE chat_id = $1", chatID)
	if err != nil {
		return nil, fmt.Errorf("list chat participants: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		users = append(users, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}

	return users, nil
}

func (r *chatRepository) ChatsByUser(ctx context.Context, username string, startPoint, count int64) ([]int64, error) {
	base := `SELECT p.chat_id FROM chat_participants p
		 JOIN chats c ON c.id = p.chat_id
		 WHERE p.username = $1`

	var (
		query string
		args  []interface{}
	)

	switch startPoint {
	case domain.SelectAll:
		query = base + " ORDER BY c.time_updated ASC"
		args = []interface{}{username}
	case domain.SelectLast:
		// fetch the newest then reverse, so the caller always sees
		// ascending update time
		query = base + " ORDER BY c.time_updated DESC LIMIT $2"
		args = []interface{}{username, count}
	default:
		query = base + " ORDER BY c.time_updated ASC LIMIT $2 OFFSET $3"
		args = []interface{}{username, count, startPoint - 1}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user chats: %w", err)
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id row: %w", err)
		}
		chatIDs = append(chatIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat id rows: %w", err)
	}

	if startPoint == domain.SelectLast {
		for i, j := 0, len(chatIDs)-1; i < j; i, j = i+1, j-1 {
			chatIDs[i], chatIDs[j] = chatIDs[j], chatIDs[i]
		}
	}

	return chatIDs, nil
}
