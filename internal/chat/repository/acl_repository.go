package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ACLRepository stores per-chat access rights. An empty username targets the
// chat-wide default entry; a per-user entry overrides the default.
//
// GetRight is three-valued: (true/false, found=true) for a stored entry,
// found=false when nothing is stored.
type ACLRepository interface {
	AddRight(ctx context.Context, chatID int64, right string, state bool, username string) error
	SetRight(ctx context.Context, chatID int64, right string, state bool, username string) error
	GetRight(ctx context.Context, chatID int64, right string, username string) (state bool, found bool, err error)
	DeleteRight(ctx context.Context, chatID int64, right string, username string) (int64, error)
}

type aclRepository struct {
	db *pgxpool.Pool
}

// NewACLRepository create an ACLRepository
func NewACLRepository(db *pgxpool.Pool) ACLRepository {
	return &aclRepository{db: db}
}

func (r *aclRepository) AddRight(ctx context.Context, chatID int64, right string, state bool, username string) error {
	var err error
	if username == "" {
		_, err = r.db.Exec(ctx,
			"INSERT INTO default_chat_acl(chat_id, right_name, state) VALUES ($1, $2, $3)",
			chatID, right, state)
	} else {
		_, err = r.db.Exec(ctx,
			"INSERT INTO user_acl(chat_id, username, right_name, state) VALUES ($1, $2, $3, $4)",
			chatID, username, right, state)
	}
	if err != nil {
		return fmt.Errorf("add acl right: %w", err)
	}
	return nil
}

func (r *aclRepository) SetRight(ctx context.Context, chatID int64, right string, state bool, username string) error {
	var err error
	if username == "" {
		_, err = r.db.Exec(ctx,
			"UPDATE default_chat_acl SET state = $1 WHERE chat_id = $2 AND right_name = $3",
			state, chatID, right)
	} else {
		_, err = r.db.Exec(ctx,
			"UPDATE user_acl SET state = $1 WHERE chat_id = $2 AND right_name = $3 AND username = $4",
			state, chatID, right, username)
	}
	if err != nil {
		return fmt.Errorf("set acl right: %w", err)
	}
	return nil
}

func (r *aclRepository) GetRight(ctx context.Context, chatID int64, right string, username string) (bool, bool, error) {
	var (
		row pgx.Row
	)
	if username == "" {
		row = r.db.QueryRow(ctx,
			"SELECT state FROM default_chat_acl WHERE chat_id = $1 AND right_name = $2",
			chatID, right)
	} else {
		row = r.db.QueryRow(ctx,
			"SELECT state FROM user_acl WHERE chat_id = $1 AND right_name = $2 AND username = $3",
			chatID, right, username)
	}

	var state bool
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get acl right: %w", err)
	}
	return state, true, nil
}

func (r *aclRepository) DeleteRight(ctx context.Context, chatID int64, right string, username string) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if username == "" {
		tag, err = r.db.Exec(ctx,
			"DELETE FROM default_chat_acl WHERE chat_id = $1 AND right_name = $2",
			chatID, right)
	} else {
		tag, err = r.db.Exec(ctx,
			"DELETE FROM user_acl WHERE chat_id = $1 AND right_name = $2 AND username = $3",
			chatID, right, username)
	}
	if err != nil {
		return 0, fmt.Errorf("delete acl right: %w", err)
	}
	return tag.RowsAffected(), nil
}
