package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swastiapp/swasti-server/internal/http/response"
	"github.com/swastiapp/swasti-server/internal/state"
)

func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchTips(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.Tips(), s.logger)
}

func (s *Server) handleFeedTips(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchFeedTips(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.FeedTips(), s.logger)
}

func (s *Server) handlePopularTips(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchPopularTips(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.PopularTips(), s.logger)
}

func (s *Server) handleSavedTips(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchSavedTips(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.SavedTips(), s.logger)
}

func (s *Server) handleGetTip(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchTipByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.CurrentTip(), s.logger)
}

// CreateTipRequest is the authoring payload. List entries are filtered for
// blanks by the content store.
type CreateTipRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"required"`
	Benefits    []string `json:"benefits" validate:"required"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

func (s *Server) handleCreateTip(w http.ResponseWriter, r *http.Request) {
	var req CreateTipRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := storeContext(r.Context())
	created, err := sc.Content.CreateTip(r.Context(), state.TipInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Benefits:    req.Benefits,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, created, s.logger)
}

func (s *Server) handleSaveTip(w http.ResponseWriter, r *http.Request) {
	s.tipMutation(w, r, storeContext(r.Context()).Content.SaveTip)
}

func (s *Server) handleUnsaveTip(w http.ResponseWriter, r *http.Request) {
	s.tipMutation(w, r, storeContext(r.Context()).Content.UnsaveTip)
}

func (s *Server) handleLikeTip(w http.ResponseWriter, r *http.Request) {
	s.tipMutation(w, r, storeContext(r.Context()).Content.LikeTip)
}

func (s *Server) handleUnlikeTip(w http.ResponseWriter, r *http.Request) {
	s.tipMutation(w, r, storeContext(r.Context()).Content.UnlikeTip)
}

// tipMutation runs a save/like style mutation against the {id} tip and
// returns the updated view when it is locally loaded.
func (s *Server) tipMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tipID string) error) {
	tipID := chi.URLParam(r, "id")
	if err := op(r.Context(), tipID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := storeContext(r.Context())
	for _, tv := range sc.Content.Tips() {
		if tv.ID == tipID {
			response.Success(w, tv, s.logger)
			return
		}
	}
	if current := sc.Content.CurrentTip(); current != nil && current.ID == tipID {
		response.Success(w, current, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	sc := storeContext(r.Context())
	if err := sc.Content.FetchComments(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, sc.Content.Comments(), s.logger)
}

// AddCommentRequest is the request body for commenting on a tip.
type AddCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := storeContext(r.Context())
	if err := sc.Content.AddComment(r.Context(), chi.URLParam(r, "id"), req.Content); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	comments := sc.Content.Comments()
	if len(comments) == 0 {
		response.NoContent(w)
		return
	}
	response.Created(w, comments[0], s.logger)
}
