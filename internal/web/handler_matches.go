package web

import (
	"net/http"

	"github.com/vbonduro/lostfound/internal/domain"
)

type verifyMatchRequest struct {
	Status domain.MatchStatus `json:"status"`
}

func (s *Server) handlePendingMatches(w http.ResponseWriter, r *http.Request) {
	details, err := s.matches.ListPending(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleMyMatches(w http.ResponseWriter, r *http.Request) {
	details, err := s.matches.ListForUser(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleGenerateMatches(w http.ResponseWriter, r *http.Request) {
	res, err := s.matches.GenerateAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVerifyMatch(w http.ResponseWriter, r *http.Request) {
	var req verifyMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p, err := s.matches.Review(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}
