package domain

import "time"

// Tip is a wellness-advice post as stored by the data service. Author
// display fields are a snapshot joined in at fetch time; they are not kept
// live if the author later edits their profile.
type Tip struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Benefits      []string  `json:"benefits"`
	Ingredients   []string  `json:"ingredients,omitempty"`
	Steps         []string  `json:"steps,omitempty"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name,omitempty"`
	AuthorAvatar  string    `json:"author_avatar,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// TipView is a Tip enriched with the current user's personalized state and
// live counters. This is the shape every content store operation produces.
type TipView struct {
	Tip
	Saved   bool `json:"saved"`
	IsLiked bool `json:"is_liked"`
	// Likes and Comments shadow the stored counters with live values
	// computed or adjusted by the store.
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// Like is a (user, tip) join fact; existence implies "liked".
type Like struct {
	UserID string `json:"user_id"`
	TipID  string `json:"tip_id"`
}

// SavedTip is a (user, tip) join fact; existence implies "saved".
type SavedTip struct {
	UserID string `json:"user_id"`
	TipID  string `json:"tip_id"`
}

// Follow is a directed (follower, followee) join fact.
type Follow struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}
