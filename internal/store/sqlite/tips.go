package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

// tipColumns is the ordered list of columns selected in tip queries. Author
// name and avatar are joined in from profiles. Must match the scan order in
// scanTip.
const tipColumns = `t.id, t.author_id, t.title, t.description, t.category,
	t.benefits, t.ingredients, t.steps, t.likes_count, t.comments_count,
	t.created_at, p.name, p.avatar_url`

const tipFrom = ` FROM tips t JOIN profiles p ON p.user_id = t.author_id`

// scanTip scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tip.
func scanTip(scanner interface{ Scan(dest ...any) error }) (*domain.Tip, error) {
	var t domain.Tip

	var (
		benefits    string
		ingredients sql.NullString
		steps       sql.NullString
		createdAt   string
	)

	err := scanner.Scan(
		&t.ID,
		&t.AuthorID,
		&t.Title,
		&t.Description,
		&t.Category,
		&benefits,
		&ingredients,
		&steps,
		&t.LikesCount,
		&t.CommentsCount,
		&createdAt,
		&t.AuthorName,
		&t.AuthorAvatar,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(benefits), &t.Benefits); err != nil {
		return nil, fmt.Errorf("unmarshal benefits: %w", err)
	}
	if ingredients.Valid {
		if err := json.Unmarshal([]byte(ingredients.String), &t.Ingredients); err != nil {
			return nil, fmt.Errorf("unmarshal ingredients: %w", err)
		}
	}
	if steps.Valid {
		if err := json.Unmarshal([]byte(steps.String), &t.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal steps: %w", err)
		}
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// marshalStringList encodes an optional string list as a JSON column value.
// Nil maps to NULL so optional sections stay absent rather than empty.
func marshalStringList(list []string) (sql.NullString, error) {
	if list == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// CreateTip inserts a new tip.
func (s *Store) CreateTip(ctx context.Context, tip *domain.Tip) error {
	benefits, err := json.Marshal(tip.Benefits)
	if err != nil {
		return fmt.Errorf("marshal benefits: %w", err)
	}
	ingredients, err := marshalStringList(tip.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}
	steps, err := marshalStringList(tip.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tips (
			id, author_id, title, description, category,
			benefits, ingredients, steps, likes_count, comments_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tip.ID,
		tip.AuthorID,
		tip.Title,
		tip.Description,
		tip.Category,
		string(benefits),
		ingredients,
		steps,
		tip.LikesCount,
		tip.CommentsCount,
		formatTime(tip.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTip retrieves a tip by ID.
// Returns store.ErrNotFound if the tip does not exist.
func (s *Store) GetTip(ctx context.Context, id string) (*domain.Tip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tipColumns+tipFrom+` WHERE t.id = ?`, id)

	t, err := scanTip(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTips retrieves tips matching the query.
func (s *Store) ListTips(ctx context.Context, q store.TipQuery) ([]*domain.Tip, error) {
	var (
		where []string
		args  []any
	)

	if q.AuthorIDs != nil {
		if len(q.AuthorIDs) == 0 {
			return []*domain.Tip{}, nil
		}
		placeholders := make([]string, len(q.AuthorIDs))
		for i, id := range q.AuthorIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where, fmt.Sprintf("t.author_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if q.Category != "" {
		where = append(where, "t.category = ?")
		args = append(args, q.Category)
	}

	query := `SELECT ` + tipColumns + tipFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch q.OrderBy {
	case store.OrderMostLiked:
		query += " ORDER BY t.likes_count DESC, t.created_at DESC"
	default:
		query += " ORDER BY t.created_at DESC"
	}

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTips(rows)
}

// collectTips drains a tip result set.
func collectTips(rows *sql.Rows) ([]*domain.Tip, error) {
	tips := []*domain.Tip{}
	for rows.Next() {
		t, err := scanTip(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tips, nil
}

// AdjustTipLikes adds delta to a tip's like count, clamped at zero.
func (s *Store) AdjustTipLikes(ctx context.Context, tipID string, delta int) error {
	return s.adjustTipCounter(ctx, "likes_count", tipID, delta)
}

// AdjustTipComments adds delta to a tip's comment count, clamped at zero.
func (s *Store) AdjustTipComments(ctx context.Context, tipID string, delta int) error {
	return s.adjustTipCounter(ctx, "comments_count", tipID, delta)
}

func (s *Store) adjustTipCounter(ctx context.Context, column, tipID string, delta int) error {
	//#nosec G202 -- column comes from a fixed set of literals above
	query := `UPDATE tips SET ` + column + ` = MAX(0, ` + column + ` + ?) WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, delta, tipID)
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
