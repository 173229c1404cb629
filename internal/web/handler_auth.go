package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

type signupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	UniversityID string `json:"university_id"`
	Password     string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse carries a token only for verified accounts.
type authResponse struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), domain.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		UniversityID: req.UniversityID,
		Password:     req.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := authResponse{User: user}
	if !user.Verified {
		resp.Message = "Registration received. An administrator will verify your account."
		s.writeJSON(w, http.StatusCreated, resp)
		return
	}
	resp.Token, err = s.tokens.Issue(user)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}
