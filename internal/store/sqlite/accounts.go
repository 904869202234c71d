package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

// accountColumns is the ordered list of columns selected in account queries.
// Must match the scan order in scanAccount.
const accountColumns = `id, email, email_lower, password_hash, name, avatar_url,
	provider, email_verified_at, created_at, updated_at`

// scanAccount scans a sql.Row (or sql.Rows via its Scan method) into a domain.Account.
func scanAccount(scanner interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var a domain.Account

	var (
		emailLower      string
		passwordHash    sql.NullString
		emailVerifiedAt sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := scanner.Scan(
		&a.ID,
		&a.Email,
		&emailLower,
		&passwordHash,
		&a.Name,
		&a.AvatarURL,
		&a.Provider,
		&emailVerifiedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		a.PasswordHash = passwordHash.String
	}

	a.EmailVerifiedAt, err = parseNullableTime(emailVerifiedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateAccount inserts a new account.
// Returns store.ErrEmailTaken if the email is already registered.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	emailLower := strings.ToLower(strings.TrimSpace(account.Email))

	var verifiedAt sql.NullString
	if account.EmailVerifiedAt != nil {
		verifiedAt = sql.NullString{String: formatTime(*account.EmailVerifiedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, email_lower, password_hash, name, avatar_url,
			provider, email_verified_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		emailLower,
		nullString(account.PasswordHash),
		account.Name,
		account.AvatarURL,
		account.Provider,
		verifiedAt,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetAccount retrieves an account by ID.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountByEmail retrieves an account by lowercased email.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	lower := strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email_lower = ?`, lower)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAccount updates an existing account.
// Returns store.ErrNotFound if the account does not exist.
func (s *Store) UpdateAccount(ctx context.Context, account *domain.Account) error {
	var verifiedAt sql.NullString
	if account.EmailVerifiedAt != nil {
		verifiedAt = sql.NullString{String: formatTime(*account.EmailVerifiedAt), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			email = ?, email_lower = ?, password_hash = ?, name = ?,
			avatar_url = ?, provider = ?, email_verified_at = ?, updated_at = ?
		WHERE id = ?`,
		account.Email,
		strings.ToLower(strings.TrimSpace(account.Email)),
		nullString(account.PasswordHash),
		account.Name,
		account.AvatarURL,
		account.Provider,
		verifiedAt,
		formatTime(account.UpdatedAt),
		account.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
