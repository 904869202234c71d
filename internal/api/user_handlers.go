package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swastiapp/swasti-server/internal/domain"
	apperrors "github.com/swastiapp/swasti-server/internal/errors"
	"github.com/swastiapp/swasti-server/internal/http/response"
	"github.com/swastiapp/swasti-server/internal/store"
)

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())

	// Re-resolve from the identity service so a freshly provisioned
	// federated account gets its profile row on first call.
	if err := sc.Session.RestoreSession(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user := sc.Session.User()
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}
	response.Success(w, user, s.logger)
}

// UpdateProfileRequest carries the editable profile fields. Absent fields
// are left untouched.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := storeContext(r.Context())
	update := domain.ProfileUpdate{
		Name:      req.Name,
		Bio:       req.Bio,
		Location:  req.Location,
		AvatarURL: req.AvatarURL,
	}
	if err := sc.Session.UpdateProfile(r.Context(), update); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, sc.Session.User(), s.logger)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := s.data.GetProfile(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	view := domain.ProfileView{Profile: *profile}
	if sc := storeContext(r.Context()); sc != nil {
		if viewerID := sc.Session.CurrentUserID(); viewerID != "" && viewerID != userID {
			following, err := s.data.IsFollowing(r.Context(), viewerID, userID)
			if err != nil {
				response.HandleError(w, err, s.logger)
				return
			}
			view.IsFollowing = following
		}
	}

	response.Success(w, view, s.logger)
}

func (s *Server) handleFollowUser(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	followerID := sc.Session.CurrentUserID()
	followingID := chi.URLParam(r, "id")

	if followerID == followingID {
		response.HandleError(w, apperrors.Validation("cannot follow yourself"), s.logger)
		return
	}

	// Make sure the target exists before writing the edge.
	if _, err := s.data.GetProfile(r.Context(), followingID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	err := s.data.InsertFollow(r.Context(), followerID, followingID)
	if err == store.ErrAlreadyExists {
		response.NoContent(w)
		return
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// Two independent counter calls; a failure between them leaves drift.
	if err := s.data.AdjustProfileFollowers(r.Context(), followingID, 1); err != nil {
		s.logger.Warn("follower counter increment failed", "user_id", followingID, "error", err)
	}
	if err := s.data.AdjustProfileFollowing(r.Context(), followerID, 1); err != nil {
		s.logger.Warn("following counter increment failed", "user_id", followerID, "error", err)
	}

	response.NoContent(w)
}

func (s *Server) handleUnfollowUser(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	followerID := sc.Session.CurrentUserID()
	followingID := chi.URLParam(r, "id")

	err := s.data.DeleteFollow(r.Context(), followerID, followingID)
	if err == store.ErrNotFound {
		response.NoContent(w)
		return
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.data.AdjustProfileFollowers(r.Context(), followingID, -1); err != nil {
		s.logger.Warn("follower counter decrement failed", "user_id", followingID, "error", err)
	}
	if err := s.data.AdjustProfileFollowing(r.Context(), followerID, -1); err != nil {
		s.logger.Warn("following counter decrement failed", "user_id", followerID, "error", err)
	}

	response.NoContent(w)
}
