package domain

import (
	"strings"
	"time"
)

// NewItem is the caller-supplied part of an item report.
type NewItem struct {
	Title       string
	Category    string
	Description string
	Location    string
	Date        time.Time
	ImageKey    string
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

// Normalize trims surrounding whitespace from every text field.
func (n NewItem) Normalize() NewItem {
	n.Title = strings.TrimSpace(n.Title)
	n.Category = strings.TrimSpace(n.Category)
	n.Description = strings.TrimSpace(n.Description)
	n.Location = strings.TrimSpace(n.Location)
	return n
}

func (n NewItem) Validate() error {
	switch {
	case n.Title == "":
		return &ValidationError{Field: "title", Message: "is required"}
	case len(n.Title) > maxTitleLen:
		return &ValidationError{Field: "title", Message: "is too long"}
	case n.Category == "":
		return &ValidationError{Field: "category", Message: "is required"}
	case n.Description == "":
		return &ValidationError{Field: "description", Message: "is required"}
	case len(n.Description) > maxDescriptionLen:
		return &ValidationError{Field: "description", Message: "is too long"}
	case n.Location == "":
		return &ValidationError{Field: "location", Message: "is required"}
	case n.Date.IsZero():
		return &ValidationError{Field: "date", Message: "is required"}
	}
	return nil
}

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// NewUser is a registration request.
type NewUser struct {
	Name         string
	Email        string
	UniversityID string
	Password     string
}

func (n NewUser) Normalize() NewUser {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	n.UniversityID = strings.TrimSpace(n.UniversityID)
	return n
}

func (n NewUser) Validate() error {
	switch {
	case n.Name == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case n.Email == "" || !strings.Contains(n.Email, "@"):
		return &ValidationError{Field: "email", Message: "must be an email address"}
	case n.UniversityID == "":
		return &ValidationError{Field: "university_id", Message: "is required"}
	case len(n.Password) < MinPasswordLen:
		return &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	return nil
}
