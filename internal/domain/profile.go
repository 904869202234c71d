package domain

import "time"

// Profile is the social-facing row for a user, keyed by the identity's
// account id. Counters are denormalized and maintained by the counter
// procedures on the data service; they are not recomputed from the join
// tables.
type Profile struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	TipsCount      int       `json:"tips_count"`
	SavedTipsCount int       `json:"saved_tips_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfile creates a default profile for an account with zeroed counters.
func NewProfile(userID, name, email, avatarURL string) *Profile {
	now := time.Now()
	if name == "" {
		name = "User"
	}
	return &Profile{
		UserID:    userID,
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave as is".
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Location  *string `json:"location,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Apply merges the update into the profile in place.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	p.UpdatedAt = time.Now()
}

// ProfileView is a profile as seen by another user, with the viewer's
// follow state resolved.
type ProfileView struct {
	Profile
	IsFollowing bool `json:"is_following"`
}
