package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, name, email, avatar_url, bio, location,
	followers_count, following_count, tips_count, saved_tips_count,
	created_at, updated_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.AvatarURL,
		&p.Bio,
		&p.Location,
		&p.FollowersCount,
		&p.FollowingCount,
		&p.TipsCount,
		&p.SavedTipsCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateProfile inserts a new profile row.
// Returns store.ErrAlreadyExists if a profile for the user already exists.
func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, name, email, avatar_url, bio, location,
			followers_count, following_count, tips_count, saved_tips_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID,
		profile.Name,
		profile.Email,
		profile.AvatarURL,
		profile.Bio,
		profile.Location,
		profile.FollowersCount,
		profile.FollowingCount,
		profile.TipsCount,
		profile.SavedTipsCount,
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetProfile retrieves a profile by user ID.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile updates the editable fields of an existing profile.
// Counter columns are managed by the Adjust procedures, not here.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			name = ?, email = ?, avatar_url = ?, bio = ?, location = ?, updated_at = ?
		WHERE user_id = ?`,
		profile.Name,
		profile.Email,
		profile.AvatarURL,
		profile.Bio,
		profile.Location,
		formatTime(profile.UpdatedAt),
		profile.UserID,
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

// AdjustProfileTips adds delta to a profile's tip count.
func (s *Store) AdjustProfileTips(ctx context.Context, userID string, delta int) error {
	return s.adjustProfileCounter(ctx, "tips_count", userID, delta)
}

// AdjustProfileSavedTips adds delta to a profile's saved tip count.
func (s *Store) AdjustProfileSavedTips(ctx context.Context, userID string, delta int) error {
	return s.adjustProfileCounter(ctx, "saved_tips_count", userID, delta)
}

// AdjustProfileFollowers adds delta to a profile's follower count.
func (s *Store) AdjustProfileFollowers(ctx context.Context, userID string, delta int) error {
	return s.adjustProfileCounter(ctx, "followers_count", userID, delta)
}

// AdjustProfileFollowing adds delta to a profile's following count.
func (s *Store) AdjustProfileFollowing(ctx context.Context, userID string, delta int) error {
	return s.adjustProfileCounter(ctx, "following_count", userID, delta)
}

// adjustProfileCounter applies delta to a single counter column, clamped at
// zero. The column name is always one of our fixed constants, never input.
func (s *Store) adjustProfileCounter(ctx context.Context, column, userID string, delta int) error {
	//#nosec G202 -- column comes from a fixed set of literals above
	query := `UPDATE profiles SET ` + column + ` = MAX(0, ` + column + ` + ?), updated_at = updated_at WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, delta, userID)
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
