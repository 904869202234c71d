package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

// pairExists reports whether a (user, tip) or (follower, following) row is
// present in one of the join tables.
func (s *Store) pairExists(ctx context.Context, query string, a, b string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, a, b).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// insertPair inserts a join-table row, mapping duplicates to
// store.ErrAlreadyExists.
func (s *Store) insertPair(ctx context.Context, query string, a, b string) error {
	_, err := s.db.ExecContext(ctx, query, a, b, formatTime(time.Now()))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// deletePair removes a join-table row, mapping a miss to store.ErrNotFound.
func (s *Store) deletePair(ctx context.Context, query string, a, b string) error {
	result, err := s.db.ExecContext(ctx, query, a, b)
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

// listIDs drains a single-column string result set.
func (s *Store) listIDs(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertLike records that a user likes a tip.
// Returns store.ErrAlreadyExists if the like is already present.
func (s *Store) InsertLike(ctx context.Context, userID, tipID string) error {
	return s.insertPair(ctx,
		`INSERT INTO likes (user_id, tip_id, created_at) VALUES (?, ?, ?)`, userID, tipID)
}

// DeleteLike removes a like. Returns store.ErrNotFound if it was not present.
func (s *Store) DeleteLike(ctx context.Context, userID, tipID string) error {
	return s.deletePair(ctx,
		`DELETE FROM likes WHERE user_id = ? AND tip_id = ?`, userID, tipID)
}

// LikeExists reports whether the user has liked the tip.
func (s *Store) LikeExists(ctx context.Context, userID, tipID string) (bool, error) {
	return s.pairExists(ctx,
		`SELECT COUNT(*) FROM likes WHERE user_id = ? AND tip_id = ?`, userID, tipID)
}

// ListLikedTipIDs returns the IDs of every tip the user has liked.
func (s *Store) ListLikedTipIDs(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT tip_id FROM likes WHERE user_id = ?`, userID)
}

// CountLikes counts the like rows for each of the given tips. Tips with no
// likes are absent from the result.
func (s *Store) CountLikes(ctx context.Context, tipIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	if len(tipIDs) == 0 {
		return counts, nil
	}

	placeholders := strings.Repeat("?, ", len(tipIDs)-1) + "?"
	args := make([]any, len(tipIDs))
	for i, id := range tipIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tip_id, COUNT(*)
		FROM likes
		WHERE tip_id IN (`+placeholders+`)
		GROUP BY tip_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// InsertSavedTip records that a user saved a tip.
// Returns store.ErrAlreadyExists if the tip is already saved.
func (s *Store) InsertSavedTip(ctx context.Context, userID, tipID string) error {
	return s.insertPair(ctx,
		`INSERT INTO saved_tips (user_id, tip_id, created_at) VALUES (?, ?, ?)`, userID, tipID)
}

// DeleteSavedTip removes a saved tip. Returns store.ErrNotFound if it was not
// saved.
func (s *Store) DeleteSavedTip(ctx context.Context, userID, tipID string) error {
	return s.deletePair(ctx,
		`DELETE FROM saved_tips WHERE user_id = ? AND tip_id = ?`, userID, tipID)
}

// SavedTipExists reports whether the user has saved the tip.
func (s *Store) SavedTipExists(ctx context.Context, userID, tipID string) (bool, error) {
	return s.pairExists(ctx,
		`SELECT COUNT(*) FROM saved_tips WHERE user_id = ? AND tip_id = ?`, userID, tipID)
}

// ListSavedTipIDs returns the IDs of every tip the user has saved, most
// recently saved first.
func (s *Store) ListSavedTipIDs(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx,
		`SELECT tip_id FROM saved_tips WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListSavedTips returns the full tips a user has saved, most recently saved
// first.
func (s *Store) ListSavedTips(ctx context.Context, userID string) ([]*domain.Tip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tipColumns+`
		FROM saved_tips st
		JOIN tips t ON t.id = st.tip_id
		JOIN profiles p ON p.user_id = t.author_id
		WHERE st.user_id = ?
		ORDER BY st.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTips(rows)
}

// InsertFollow records that follower follows following.
// Returns store.ErrAlreadyExists if the follow is already present.
func (s *Store) InsertFollow(ctx context.Context, followerID, followingID string) error {
	return s.insertPair(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		followerID, followingID)
}

// DeleteFollow removes a follow edge. Returns store.ErrNotFound if it was not
// present.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	return s.deletePair(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
}

// IsFollowing reports whether follower follows following.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.pairExists(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
}

// ListFollowingIDs returns the IDs of every user the follower follows.
func (s *Store) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	return s.listIDs(ctx,
		`SELECT following_id FROM follows WHERE follower_id = ?`, followerID)
}
