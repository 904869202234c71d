package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/store"
)

func TestCreateAndGetTip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "mira@example.com", "Mira")

	tip := &domain.Tip{
		ID:          "tip-1",
		AuthorID:    "user-1",
		Title:       "Ginger tea for digestion",
		Description: "Steep fresh ginger in hot water.",
		Category:    "Digestion & Gut Health",
		Benefits:    []string{"soothes the stomach", "reduces bloating"},
		Ingredients: []string{"fresh ginger", "hot water"},
		CreatedAt:   time.Now(),
	}
	if err := s.CreateTip(ctx, tip); err != nil {
		t.Fatalf("CreateTip: %v", err)
	}

	got, err := s.GetTip(ctx, "tip-1")
	if err != nil {
		t.Fatalf("GetTip: %v", err)
	}
	if got.Title != tip.Title {
		t.Errorf("title = %s", got.Title)
	}
	if len(got.Benefits) != 2 {
		t.Errorf("benefits = %v", got.Benefits)
	}
	if len(got.Ingredients) != 2 {
		t.Errorf("ingredients = %v", got.Ingredients)
	}
	if got.Steps != nil {
		t.Errorf("steps should stay nil when absent, got %v", got.Steps)
	}
	if got.AuthorName != "Mira" {
		t.Errorf("author name = %s, want joined profile name", got.AuthorName)
	}
}

func TestGetTipNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTip(context.Background(), "tip-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTipsOrderAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "mira@example.com", "Mira")
	seedUser(t, s, "user-2", "dev@example.com", "Dev")

	base := time.Now().Add(-time.Hour)
	seedTip(t, s, "tip-1", "user-1", "oldest", base)
	seedTip(t, s, "tip-2", "user-2", "middle", base.Add(time.Minute))
	seedTip(t, s, "tip-3", "user-1", "newest", base.Add(2*time.Minute))

	tips, err := s.ListTips(ctx, store.TipQuery{})
	if err != nil {
		t.Fatalf("ListTips: %v", err)
	}
	if len(tips) != 3 {
		t.Fatalf("got %d tips, want 3", len(tips))
	}
	if tips[0].ID != "tip-3" || tips[2].ID != "tip-1" {
		t.Errorf("wrong order: %s, %s, %s", tips[0].ID, tips[1].ID, tips[2].ID)
	}

	tips, err = s.ListTips(ctx, store.TipQuery{AuthorIDs: []string{"user-1"}})
	if err != nil {
		t.Fatalf("ListTips by author: %v", err)
	}
	if len(tips) != 2 {
		t.Errorf("got %d tips for user-1, want 2", len(tips))
	}

	tips, err = s.ListTips(ctx, store.TipQuery{AuthorIDs: []string{}})
	if err != nil {
		t.Fatalf("ListTips empty authors: %v", err)
	}
	if len(tips) != 0 {
		t.Errorf("empty author filter should match nothing, got %d", len(tips))
	}

	tips, err = s.ListTips(ctx, store.TipQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListTips limit: %v", err)
	}
	if len(tips) != 2 {
		t.Errorf("got %d tips with limit 2", len(tips))
	}
}

func TestListTipsMostLiked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "mira@example.com", "Mira")

	base := time.Now().Add(-time.Hour)
	seedTip(t, s, "tip-1", "user-1", "quiet", base)
	seedTip(t, s, "tip-2", "user-1", "popular", base.Add(time.Minute))

	if err := s.AdjustTipLikes(ctx, "tip-2", 5); err != nil {
		t.Fatalf("AdjustTipLikes: %v", err)
	}

	tips, err := s.ListTips(ctx, store.TipQuery{OrderBy: store.OrderMostLiked})
	if err != nil {
		t.Fatalf("ListTips: %v", err)
	}
	if tips[0].ID != "tip-2" {
		t.Errorf("most liked first, got %s", tips[0].ID)
	}
	if tips[0].LikesCount != 5 {
		t.Errorf("likes = %d, want 5", tips[0].LikesCount)
	}
}

func TestAdjustTipLikesClampsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "mira@example.com", "Mira")
	seedTip(t, s, "tip-1", "user-1", "a tip", time.Now())

	if err := s.AdjustTipLikes(ctx, "tip-1", -3); err != nil {
		t.Fatalf("AdjustTipLikes: %v", err)
	}

	got, err := s.GetTip(ctx, "tip-1")
	if err != nil {
		t.Fatalf("GetTip: %v", err)
	}
	if got.LikesCount != 0 {
		t.Errorf("likes = %d, want clamp at 0", got.LikesCount)
	}
}

func TestAdjustTipLikesMissingTip(t *testing.T) {
	s := newTestStore(t)

	err := s.AdjustTipLikes(context.Background(), "tip-missing", 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "mira@example.com", "Mira")
	seedUser(t, s, "user-2", "dev@example.com", "Dev")
	seedTip(t, s, "tip-1", "user-1", "a tip", time.Now())

	first := &domain.Comment{
		ID: "cmt-1", TipID: "tip-1", UserID: "user-2",
		Content: "works for me", CreatedAt: time.Now().Add(-time.Minute),
	}
	second := &domain.Comment{
		ID: "cmt-2", TipID: "tip-1", UserID: "user-1",
		Content: "glad to hear it", CreatedAt: time.Now(),
	}
	for _, c := range []*domain.Comment{first, second} {
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment %s: %v", c.ID, err)
		}
	}

	comments, err := s.ListComments(ctx, "tip-1")
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].ID != "cmt-2" {
		t.Errorf("newest first, got %s", comments[0].ID)
	}
	if comments[0].UserName != "Mira" {
		t.Errorf("user name = %s, want joined profile name", comments[0].UserName)
	}
}
