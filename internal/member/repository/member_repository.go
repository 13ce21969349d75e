package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"chat_backend_service/internal/member/domain"
)

// MemberRepository is the backing store for registered users, keyed by the
// case-sensitive username.
type MemberRepository interface {
	// UpsertBatch persists a set of credentials in one transaction. On a
	// username conflict the stored hash and salt are overwritten.
	UpsertBatch(ctx context.Context, users map[string]domain.Credentials) error
	// FindByName returns domain.ErrUserNotFound when the username is absent.
	FindByName(ctx context.Context, name string) (*domain.RegisteredUser, error)
	// LoadAll returns the full credential directory.
	LoadAll(ctx context.Context) (map[string]domain.Credentials, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) UpsertBatch(ctx context.Context, users map[string]domain.Credentials) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin user upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for name, creds := range users {
		batch.Queue(
			`INSERT INTO users(name, password_hash, salt) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET password_hash = EXCLUDED.password_hash, salt = EXCLUDED.salt`,
			name, creds.PasswordHash, creds.Salt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range users {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert user batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close user batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *memberRepository) FindByName(ctx context.Context, name string) (*domain.RegisteredUser, error) {
	row := r.db.QueryRow(ctx,
		"SELECT name, password_hash, salt FROM users WHERE name = $1", name)

	var user domain.RegisteredUser
	if err := row.Scan(&user.Name, &user.PasswordHash, &user.Salt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by name: %w", err)
	}

	return &user, nil
}

func (r *memberRepository) LoadAll(ctx context.Context) (map[string]domain.Credentials, error) {
	rows, err := r.db.Query(ctx, "SELECT name, password_hash, salt FROM users")
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]domain.Credentials)
	for rows.Next() {
		var name string
		var creds domain.Credentials
		if err := rows.Scan(&name, &creds.PasswordHash, &creds.Salt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users[name] = creds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}
