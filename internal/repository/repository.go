// Package repository implements the poll repository, the vote ledger, and
// the poll read-model assembly over a transactional Postgres store.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"slotpoll/internal/apperr"
	"slotpoll/internal/db"
	"slotpoll/internal/model"
)

const uniqueViolation = "23505"

type Store struct {
	db *db.Store
}

func NewStore(store *db.Store) *Store {
	return &Store{db: store}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storage wraps an unclassified driver error so the HTTP layer reports a
// generic server fault without leaking driver details.
func storage(err error) error {
	return apperr.Wrap(apperr.KindStorage, "server_error", err)
}

// CreateAdminWithSession inserts the admin and its first session in one
// transaction. A duplicate name reports Conflict.
func (s *Store) CreateAdminWithSession(ctx context.Context, admin model.Admin, session model.AdminSession) error {
	err := s.db.WithTx(ctx, func(tx db.DBTX) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO admins (id, name, password_hash, created_at)
			VALUES ($1, $2, $3, $4)
		`, admin.ID, admin.Name, admin.PasswordHash, admin.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO admin_sessions (id, admin_id, created_at)
			VALUES ($1, $2, $3)
		`, session.ID, session.AdminID, session.CreatedAt)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "name_taken", err)
		}
		return storage(err)
	}
	return nil
}

func (s *Store) GetAdminByName(ctx context.Context, name string) (model.Admin, error) {
	var admin model.Admin
	row := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, password_hash, created_at
		FROM admins
		WHERE name = $1
	`, name)
	if err := row.Scan(&admin.ID, &admin.Name, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Admin{}, apperr.New(apperr.KindNotFound, "admin_not_found")
		}
		return model.Admin{}, storage(err)
	}
	return admin, nil
}

func (s *Store) CreateSession(ctx context.Context, session model.AdminSession) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO admin_sessions (id, admin_id, created_at)
		VALUES ($1, $2, $3)
	`, session.ID, session.AdminID, session.CreatedAt)
	if err != nil {
		return storage(err)
	}
	return nil
}

// GetSessionAdmin resolves a bearer token to the owning admin.
func (s *Store) GetSessionAdmin(ctx context.Context, token string) (model.Admin, error) {
	var admin model.Admin
	row := s.db.Pool.QueryRow(ctx, `
		SELECT a.id, a.name, a.password_hash, a.created_at
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = $1
	`, token)
	if err := row.Scan(&admin.ID, &admin.Name, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Admin{}, apperr.New(apperr.KindNotFound, "session_not_found")
		}
		return model.Admin{}, storage(err)
	}
	return admin, nil
}

// DeleteSession removes the session for token. Deleting a token that was
// not live is reported, not silently ignored.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, token)
	if err != nil {
		return storage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "session_not_found")
	}
	return nil
}
