// Package store defines the persistence interface for the Swasti server.
package store

import (
	"context"

	"github.com/swastiapp/swasti-server/internal/domain"
)

// TipOrder controls the sort order of tip listings.
type TipOrder string

const (
	// OrderNewest sorts tips by creation time, newest first.
	OrderNewest TipOrder = "newest"
	// OrderMostLiked sorts tips by like count, most liked first.
	OrderMostLiked TipOrder = "most_liked"
)

// TipQuery filters and orders a tip listing. A zero query lists every tip,
// newest first.
type TipQuery struct {
	// AuthorIDs restricts results to tips authored by any of these users.
	// Nil means no author filter; an empty non-nil slice matches nothing.
	AuthorIDs []string
	// Category restricts results to a single category when non-empty.
	Category string
	// OrderBy defaults to OrderNewest.
	OrderBy TipOrder
	// Limit caps the number of results when positive.
	Limit int
}

// Store defines the interface for all persistence operations.
type Store interface {
	Close() error

	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error

	// Auth sessions
	CreateAuthSession(ctx context.Context, session *domain.AuthSession) error
	GetAuthSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthSession, error)
	DeleteAuthSession(ctx context.Context, id string) error
	DeleteExpiredAuthSessions(ctx context.Context) (int, error)

	// Profiles
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error

	// Tips
	CreateTip(ctx context.Context, tip *domain.Tip) error
	GetTip(ctx context.Context, id string) (*domain.Tip, error)
	ListTips(ctx context.Context, q TipQuery) ([]*domain.Tip, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, tipID string) ([]*domain.CommentView, error)

	// Likes
	InsertLike(ctx context.Context, userID, tipID string) error
	DeleteLike(ctx context.Context, userID, tipID string) error
	LikeExists(ctx context.Context, userID, tipID string) (bool, error)
	ListLikedTipIDs(ctx context.Context, userID string) ([]string, error)
	CountLikes(ctx context.Context, tipIDs []string) (map[string]int, error)

	// Saved tips
	InsertSavedTip(ctx context.Context, userID, tipID string) error
	DeleteSavedTip(ctx context.Context, userID, tipID string) error
	SavedTipExists(ctx context.Context, userID, tipID string) (bool, error)
	ListSavedTipIDs(ctx context.Context, userID string) ([]string, error)
	ListSavedTips(ctx context.Context, userID string) ([]*domain.Tip, error)

	// Follows
	InsertFollow(ctx context.Context, followerID, followingID string) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)

	// Counter procedures. Deltas may be negative; like counts never go
	// below zero.
	AdjustTipLikes(ctx context.Context, tipID string, delta int) error
	AdjustTipComments(ctx context.Context, tipID string, delta int) error
	AdjustProfileTips(ctx context.Context, userID string, delta int) error
	AdjustProfileSavedTips(ctx context.Context, userID string, delta int) error
	AdjustProfileFollowers(ctx context.Context, userID string, delta int) error
	AdjustProfileFollowing(ctx context.Context, userID string, delta int) error
}
