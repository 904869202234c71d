package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

// authSessionColumns is the ordered list of columns selected in auth session
// queries. Must match the scan order in scanAuthSession.
const authSessionColumns = `id, account_id, token_hash, expires_at, created_at`

// scanAuthSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.AuthSession.
func scanAuthSession(scanner interface{ Scan(dest ...any) error }) (*domain.AuthSession, error) {
	var sess domain.AuthSession

	var (
		expiresAt string
		createdAt string
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.AccountID,
		&sess.TokenHash,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// CreateAuthSession inserts a new auth session.
func (s *Store) CreateAuthSession(ctx context.Context, session *domain.AuthSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, account_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.AccountID,
		session.TokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
	)
	return err
}

// GetAuthSessionByTokenHash retrieves an auth session by its token hash.
// Returns store.ErrNotFound if no session matches.
func (s *Store) GetAuthSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authSessionColumns+` FROM auth_sessions WHERE token_hash = ?`, tokenHash)

	sess, err := scanAuthSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteAuthSession removes an auth session by ID. Deleting a session that
// does not exist is not an error.
func (s *Store) DeleteAuthSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredAuthSessions removes all sessions past their expiry.
// Returns the number of sessions deleted.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
