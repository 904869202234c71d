package api

import (
	"net/http"

	"github.com/swastiapp/swasti-server/internal/http/response"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=100"`
}

// RegisterResponse confirms registration. The verification token is included
// so a deployment without outbound mail can still complete the flow.
type RegisterResponse struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := s.registry.Anonymous()
	token, err := sc.Session.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, RegisterResponse{
		Message:           "account created, verify your email to sign in",
		VerificationToken: token,
	}, s.logger)
}

// LoginRequest is the request body for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session and the signed-in user.
type LoginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	sc := s.registry.Anonymous()
	if err := sc.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	token := sc.Session.Token()
	s.registry.Adopt(token, sc)

	response.Success(w, LoginResponse{
		Token: token,
		User:  sc.Session.User(),
	}, s.logger)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	sc, err := s.registry.For(r.Context(), token)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	logoutErr := sc.Session.Logout(r.Context())
	s.registry.Drop(token)
	if logoutErr != nil {
		// Local state is already cleared; report the remote failure.
		response.HandleError(w, logoutErr, s.logger)
		return
	}

	response.NoContent(w)
}

// GoogleLoginResponse carries the provider consent URL to redirect to.
type GoogleLoginResponse struct {
	AuthURL string `json:"auth_url"`
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	sc := s.registry.Anonymous()
	authURL, err := sc.Session.LoginWithGoogle()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, GoogleLoginResponse{AuthURL: authURL}, s.logger)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sc := s.registry.Anonymous()
	err := sc.Session.CompleteGoogleLogin(r.Context(), q.Get("state"), q.Get("email"), q.Get("name"), q.Get("avatar_url"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	token := sc.Session.Token()
	s.registry.Adopt(token, sc)

	response.Success(w, LoginResponse{
		Token: token,
		User:  sc.Session.User(),
	}, s.logger)
}

// VerifyEmailRequest redeems an email verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := s.decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.identity.VerifyEmail(r.Context(), req.Token); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "email verified"}, s.logger)
}
