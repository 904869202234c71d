package sqlite

import (
	"context"

	"github.com/swastiapp/swasti-server/internal/domain"
)

// CreateComment inserts a new comment.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, tip_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.TipID,
		comment.UserID,
		comment.Content,
		formatTime(comment.CreatedAt),
	)
	return err
}

// ListComments retrieves a tip's comments, newest first, with author name
// and avatar joined in from profiles.
func (s *Store) ListComments(ctx context.Context, tipID string) ([]*domain.CommentView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.tip_id, c.user_id, c.content, c.created_at, p.name, p.avatar_url
		FROM comments c
		JOIN profiles p ON p.user_id = c.user_id
		WHERE c.tip_id = ?
		ORDER BY c.created_at DESC`, tipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.CommentView{}
	for rows.Next() {
		var (
			cv        domain.CommentView
			createdAt string
		)
		err := rows.Scan(
			&cv.ID,
			&cv.TipID,
			&cv.UserID,
			&cv.Content,
			&createdAt,
			&cv.UserName,
			&cv.UserAvatar,
		)
		if err != nil {
			return nil, err
		}
		cv.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &cv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
