package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imaging"
)

// maxFormMemory bounds the multipart form held in memory; the image part is
// additionally limited to imaging.MaxBytes.
const maxFormMemory = imaging.MaxBytes + 1<<20

type itemRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "date", Message: "must be YYYY-MM-DD or RFC 3339"}
	}
	return t.UTC(), nil
}

func (req itemRequest) newItem() (domain.NewItem, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.NewItem{}, err
	}
	return domain.NewItem{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		Date:        date,
	}, nil
}

// readItemRequest accepts either a JSON body or a multipart form with an
// optional "image" file.
func (s *Server) readItemRequest(w http.ResponseWriter, r *http.Request) (domain.NewItem, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req itemRequest
		if err := decodeJSON(r, &req); err != nil {
			return domain.NewItem{}, nil, err
		}
		n, err := req.newItem()
		return n, nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return domain.NewItem{}, nil, &domain.ValidationError{Field: "body", Message: "failed to parse form"}
	}
	n, err := itemRequest{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
	}.newItem()
	if err != nil {
		return domain.NewItem{}, nil, err
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return n, nil, nil
	}
	if err != nil {
		return domain.NewItem{}, nil, &domain.ValidationError{Field: "image", Message: "unreadable upload"}
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxBytes+1))
	if err != nil {
		return domain.NewItem{}, nil, err
	}
	if len(data) > imaging.MaxBytes {
		return domain.NewItem{}, nil, &domain.ValidationError{Field: "image", Message: "must be 5 MB or smaller"}
	}
	return n, data, nil
}

func (s *Server) handleReportItem(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, image, err := s.readItemRequest(w, r)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		item, err := s.items.Report(r.Context(), kind, claimsFrom(r.Context()).UserID, n, image)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) handleListItems(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := s.items.List(r.Context(), kind, domain.ItemFilter{
			Category: q.Get("category"),
			Location: q.Get("location"),
			Search:   q.Get("search"),
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleListMyItems(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.items.ListMine(r.Context(), kind, claimsFrom(r.Context()).UserID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleGetItem(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.items.Get(r.Context(), kind, r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleDeleteItem(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.items.Delete(r.Context(), kind, r.PathValue("id"), claimsFrom(r.Context()).UserID); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleMarkReturned(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.items.MarkReturned(r.Context(), kind, r.PathValue("id"), claimsFrom(r.Context()).UserID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleCloseItem(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.items.Close(r.Context(), kind, r.PathValue("id"), claimsFrom(r.Context()).UserID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	reader, mimeType, err := s.items.Image(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "storage_key", key, "error", err)
	}
}
