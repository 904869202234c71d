package state

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
	apperrors "github.com/swastiapp/swasti-server/internal/errors"
	"github.com/swastiapp/swasti-server/internal/id"
	"github.com/swastiapp/swasti-server/internal/store"
)

// feedFallbackLimit caps the anonymous feed at the most recent N tips.
const feedFallbackLimit = 10

// popularLimit caps the popular listing.
const popularLimit = 10

// ContentStore owns tip collections and their social metadata. A single
// authoritative map holds one view-model per tip ID; the named collections
// (all, feed, popular, saved) are ordered ID lists over that map, so a
// mutation applied to the map is visible in every collection at once.
type ContentStore struct {
	data    store.Store
	session *SessionStore
	logger  *slog.Logger

	mu           sync.Mutex
	byID         map[string]*domain.TipView
	allIDs       []string
	feedIDs      []string
	popularIDs   []string
	savedIDs     []string
	currentTipID string
	comments     []*domain.CommentView
	loading      bool
	lastErr      *apperrors.Error
}

// NewContentStore creates an empty content store bound to a session.
func NewContentStore(data store.Store, session *SessionStore, logger *slog.Logger) *ContentStore {
	return &ContentStore{
		data:    data,
		session: session,
		logger:  logger,
		byID:    make(map[string]*domain.TipView),
	}
}

// Tips returns the "all tips" collection.
func (c *ContentStore) Tips() []*domain.TipView { return c.view(&c.allIDs) }

// FeedTips returns the personalized feed collection.
func (c *ContentStore) FeedTips() []*domain.TipView { return c.view(&c.feedIDs) }

// PopularTips returns the popular collection.
func (c *ContentStore) PopularTips() []*domain.TipView { return c.view(&c.popularIDs) }

// SavedTips returns the saved collection.
func (c *ContentStore) SavedTips() []*domain.TipView { return c.view(&c.savedIDs) }

// CurrentTip returns the tip selected for the detail view, or nil.
func (c *ContentStore) CurrentTip() *domain.TipView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentTipID == "" {
		return nil
	}
	tv, ok := c.byID[c.currentTipID]
	if !ok {
		return nil
	}
	copied := *tv
	return &copied
}

// Comments returns the comment thread of the last fetched tip.
func (c *ContentStore) Comments() []*domain.CommentView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.CommentView, len(c.comments))
	copy(out, c.comments)
	return out
}

// Loading reports whether an operation is in flight.
func (c *ContentStore) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last recorded error, or nil.
func (c *ContentStore) Err() *apperrors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError clears the last error without other side effects.
func (c *ContentStore) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// view materializes an ID list into copies of the backing view-models.
func (c *ContentStore) view(ids *[]string) []*domain.TipView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.TipView, 0, len(*ids))
	for _, tipID := range *ids {
		if tv, ok := c.byID[tipID]; ok {
			copied := *tv
			out = append(out, &copied)
		}
	}
	return out
}

func (c *ContentStore) begin() {
	c.mu.Lock()
	c.loading = true
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *ContentStore) fail(err error) *apperrors.Error {
	appErr := apperrors.FromErr(err)
	c.mu.Lock()
	c.loading = false
	c.lastErr = appErr
	c.mu.Unlock()
	return appErr
}

func (c *ContentStore) done() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// FetchTips replaces the "all tips" collection with every tip, newest first.
func (c *ContentStore) FetchTips(ctx context.Context) error {
	return c.fetchInto(ctx, &c.allIDs, store.TipQuery{})
}

// FetchFeedTips replaces the feed. Signed in, the feed is tips authored by
// followed users plus the user's own, newest first. Signed out, it degrades
// to the most recent tips with no personalized flags.
func (c *ContentStore) FetchFeedTips(ctx context.Context) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fetchInto(ctx, &c.feedIDs, store.TipQuery{Limit: feedFallbackLimit})
	}

	c.begin()
	followingIDs, err := c.data.ListFollowingIDs(ctx, userID)
	if err != nil {
		return c.fail(err)
	}
	authorIDs := append(followingIDs, userID)
	c.done()

	return c.fetchInto(ctx, &c.feedIDs, store.TipQuery{AuthorIDs: authorIDs})
}

// FetchPopularTips replaces the popular collection, ranked by like count.
func (c *ContentStore) FetchPopularTips(ctx context.Context) error {
	return c.fetchInto(ctx, &c.popularIDs, store.TipQuery{OrderBy: store.OrderMostLiked, Limit: popularLimit})
}

// FetchSavedTips replaces the saved collection with the current user's saved
// tips, most recently saved first.
func (c *ContentStore) FetchSavedTips(ctx context.Context) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	c.begin()

	tips, err := c.data.ListSavedTips(ctx, userID)
	if err != nil {
		return c.fail(err)
	}

	views, err := c.enrich(ctx, tips, userID)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.savedIDs = c.upsertAll(views)
	c.loading = false
	c.mu.Unlock()
	return nil
}

// FetchTipByID loads one tip into the detail slot.
func (c *ContentStore) FetchTipByID(ctx context.Context, tipID string) error {
	c.begin()

	tip, err := c.data.GetTip(ctx, tipID)
	if err != nil {
		return c.fail(err)
	}

	views, err := c.enrich(ctx, []*domain.Tip{tip}, c.session.CurrentUserID())
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.upsertAll(views)
	c.currentTipID = tipID
	c.loading = false
	c.mu.Unlock()
	return nil
}

// FetchComments replaces the comment thread with the given tip's comments.
func (c *ContentStore) FetchComments(ctx context.Context, tipID string) error {
	c.begin()

	comments, err := c.data.ListComments(ctx, tipID)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.comments = comments
	c.loading = false
	c.mu.Unlock()
	return nil
}

// fetchInto runs a tip query and replaces the target ID list.
func (c *ContentStore) fetchInto(ctx context.Context, target *[]string, q store.TipQuery) error {
	c.begin()

	tips, err := c.data.ListTips(ctx, q)
	if err != nil {
		return c.fail(err)
	}

	views, err := c.enrich(ctx, tips, c.session.CurrentUserID())
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	*target = c.upsertAll(views)
	c.loading = false
	c.mu.Unlock()
	return nil
}

// enrich turns raw tips into view-models carrying the current user's like
// and save state, with like counts tallied live from the like facts. The
// denormalized likes_count column can lag behind the facts, so it only
// serves the no-user path, where no fact queries run at all.
func (c *ContentStore) enrich(ctx context.Context, tips []*domain.Tip, userID string) ([]*domain.TipView, error) {
	var (
		liked, saved map[string]bool
		likeCounts   map[string]int
	)
	if userID != "" {
		likedIDs, err := c.data.ListLikedTipIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		savedIDs, err := c.data.ListSavedTipIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		liked = idSet(likedIDs)
		saved = idSet(savedIDs)

		ids := make([]string, 0, len(tips))
		for _, tip := range tips {
			ids = append(ids, tip.ID)
		}
		likeCounts, err = c.data.CountLikes(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]*domain.TipView, 0, len(tips))
	for _, tip := range tips {
		likes := tip.LikesCount
		if likeCounts != nil {
			likes = likeCounts[tip.ID]
		}
		views = append(views, &domain.TipView{
			Tip:      *tip,
			Saved:    saved[tip.ID],
			IsLiked:  liked[tip.ID],
			Likes:    likes,
			Comments: tip.CommentsCount,
		})
	}
	return views, nil
}

// upsertAll replaces map entries for the fetched tips and returns their IDs
// in fetch order. Callers hold the mutex.
func (c *ContentStore) upsertAll(views []*domain.TipView) []string {
	ids := make([]string, 0, len(views))
	for _, tv := range views {
		c.byID[tv.ID] = tv
		ids = append(ids, tv.ID)
	}
	return ids
}

// applyTip mutates the authoritative view-model for a tip, if present.
// Every ID list sees the change because they all resolve through the map.
// Callers hold the mutex. Reports whether the tip was locally known.
func (c *ContentStore) applyTip(tipID string, mutate func(*domain.TipView)) bool {
	tv, ok := c.byID[tipID]
	if !ok {
		return false
	}
	mutate(tv)
	return true
}

// SaveTip writes a saved-tip fact, then marks the tip saved in every
// collection and adds it to the saved list. Saving a tip that is not
// locally loaded still records the fact remotely; no placeholder entry is
// fabricated for the saved list.
func (c *ContentStore) SaveTip(ctx context.Context, tipID string) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	c.begin()

	err := c.data.InsertSavedTip(ctx, userID, tipID)
	if err != nil && err != store.ErrAlreadyExists {
		return c.fail(err)
	}
	if err == nil {
		if err := c.data.AdjustProfileSavedTips(ctx, userID, 1); err != nil {
			c.logger.Warn("saved-tips counter increment failed", "user_id", userID, "error", err)
		}
	}

	c.mu.Lock()
	known := c.applyTip(tipID, func(tv *domain.TipView) { tv.Saved = true })
	if known && !contains(c.savedIDs, tipID) {
		c.savedIDs = append(c.savedIDs, tipID)
	}
	c.loading = false
	c.mu.Unlock()
	return nil
}

// UnsaveTip deletes the saved-tip fact, clears the saved flag everywhere,
// and removes the tip from the saved list.
func (c *ContentStore) UnsaveTip(ctx context.Context, tipID string) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	c.begin()

	err := c.data.DeleteSavedTip(ctx, userID, tipID)
	if err != nil && err != store.ErrNotFound {
		return c.fail(err)
	}
	if err == nil {
		if err := c.data.AdjustProfileSavedTips(ctx, userID, -1); err != nil {
			c.logger.Warn("saved-tips counter decrement failed", "user_id", userID, "error", err)
		}
	}

	c.mu.Lock()
	c.applyTip(tipID, func(tv *domain.TipView) { tv.Saved = false })
	c.savedIDs = remove(c.savedIDs, tipID)
	c.loading = false
	c.mu.Unlock()
	return nil
}

// LikeTip writes a like fact, increments the remote counter, then bumps the
// like count and flag in every collection holding the tip. Liking an
// already-liked tip is a no-op, which keeps the counter from drifting.
func (c *ContentStore) LikeTip(ctx context.Context, tipID string) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	c.begin()

	err := c.data.InsertLike(ctx, userID, tipID)
	if err == store.ErrAlreadyExists {
		c.mu.Lock()
		c.applyTip(tipID, func(tv *domain.TipView) { tv.IsLiked = true })
		c.loading = false
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return c.fail(err)
	}

	if err := c.data.AdjustTipLikes(ctx, tipID, 1); err != nil {
		c.logger.Warn("like counter increment failed", "tip_id", tipID, "error", err)
	}

	c.mu.Lock()
	c.applyTip(tipID, func(tv *domain.TipView) {
		tv.IsLiked = true
		tv.Likes++
		tv.LikesCount = tv.Likes
	})
	c.loading = false
	c.mu.Unlock()
	return nil
}

// UnlikeTip deletes the like fact, decrements the remote counter, and drops
// the like count (never below zero) in every collection holding the tip.
func (c *ContentStore) UnlikeTip(ctx context.Context, tipID string) error {
	userID := c.session.CurrentUserID()
	if userID == "" {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	c.begin()

	err := c.data.DeleteLike(ctx, userID, tipID)
	if err == store.ErrNotFound {
		// Not liked: clear the flag locally, leave the count alone.
		c.mu.Lock()
		c.applyTip(tipID, func(tv *domain.TipView) { tv.IsLiked = false })
		c.loading = false
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return c.fail(err)
	}

	if err := c.data.AdjustTipLikes(ctx, tipID, -1); err != nil {
		c.logger.Warn("like counter decrement failed", "tip_id", tipID, "error", err)
	}

	c.mu.Lock()
	c.applyTip(tipID, func(tv *domain.TipView) {
		tv.IsLiked = false
		if tv.Likes > 0 {
			tv.Likes--
		}
		tv.LikesCount = tv.Likes
	})
	c.loading = false
	c.mu.Unlock()
	return nil
}

// AddComment inserts a comment row, increments the remote comment counter,
// prepends the enriched comment to the thread, and bumps the comment count
// in every collection holding the tip.
func (c *ContentStore) AddComment(ctx context.Context, tipID, content string) error {
	user := c.session.User()
	if user == nil {
		return c.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return c.fail(apperrors.Validation("comment content is required"))
	}
	c.begin()

	commentID, err := id.Generate("cmt")
	if err != nil {
		return c.fail(err)
	}
	comment := &domain.Comment{
		ID:        commentID,
		TipID:     tipID,
		UserID:    user.UserID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := c.data.CreateComment(ctx, comment); err != nil {
		return c.fail(err)
	}

	if err := c.data.AdjustTipComments(ctx, tipID, 1); err != nil {
		c.logger.Warn("comment counter increment failed", "tip_id", tipID, "error", err)
	}

	enriched := &domain.CommentView{
		Comment:    *comment,
		UserName:   user.Name,
		UserAvatar: user.AvatarURL,
	}

	c.mu.Lock()
	c.comments = append([]*domain.CommentView{enriched}, c.comments...)
	c.applyTip(tipID, func(tv *domain.TipView) {
		tv.Comments++
		tv.CommentsCount = tv.Comments
	})
	c.loading = false
	c.mu.Unlock()
	return nil
}

// TipInput is the authoring payload for CreateTip.
type TipInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Benefits    []string `json:"benefits" validate:"required"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// CreateTip validates the input, inserts the tip, increments the author's
// tips counter, and prepends the fresh tip to the all and feed collections.
// Empty list entries are filtered; optional lists with nothing left are
// omitted entirely rather than stored empty.
func (c *ContentStore) CreateTip(ctx context.Context, input TipInput) (*domain.TipView, error) {
	user := c.session.User()
	if user == nil {
		return nil, c.fail(apperrors.NotAuthenticated("no user logged in"))
	}

	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, c.fail(apperrors.Validation("title and description are required"))
	}
	if !domain.ValidCategory(input.Category) {
		return nil, c.fail(apperrors.Validationf("unknown category: %s", input.Category))
	}
	benefits := filterEmpty(input.Benefits)
	if len(benefits) == 0 {
		return nil, c.fail(apperrors.Validation("at least one benefit is required"))
	}
	c.begin()

	tipID, err := id.Generate("tip")
	if err != nil {
		return nil, c.fail(err)
	}
	tip := &domain.Tip{
		ID:           tipID,
		AuthorID:     user.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Benefits:     benefits,
		Ingredients:  nilIfEmpty(filterEmpty(input.Ingredients)),
		Steps:        nilIfEmpty(filterEmpty(input.Steps)),
		AuthorName:   user.Name,
		AuthorAvatar: user.AvatarURL,
		CreatedAt:    time.Now(),
	}
	if err := c.data.CreateTip(ctx, tip); err != nil {
		return nil, c.fail(err)
	}

	if err := c.data.AdjustProfileTips(ctx, user.UserID, 1); err != nil {
		c.logger.Warn("tips counter increment failed", "user_id", user.UserID, "error", err)
	}

	tv := &domain.TipView{Tip: *tip}

	c.mu.Lock()
	c.byID[tipID] = tv
	c.allIDs = append([]string{tipID}, c.allIDs...)
	c.feedIDs = append([]string{tipID}, c.feedIDs...)
	c.loading = false
	c.mu.Unlock()

	c.logger.Info("tip created", "tip_id", tipID, "user_id", user.UserID)
	copied := *tv
	return &copied, nil
}

// filterEmpty drops blank and whitespace-only entries.
func filterEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nilIfEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, s := range ids {
		set[s] = true
	}
	return set
}

func contains(ids []string, tipID string) bool {
	for _, s := range ids {
		if s == tipID {
			return true
		}
	}
	return false
}

func remove(ids []string, tipID string) []string {
	out := ids[:0]
	for _, s := range ids {
		if s != tipID {
			out = append(out, s)
		}
	}
	return out
}
