package web

import "net/http"

type markReadRequest struct {
	NotificationID string `json:"notificationId"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notifications.List(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCountNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.CountUnread(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.notifications.MarkRead(r.Context(), req.NotificationID, claimsFrom(r.Context()).UserID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
