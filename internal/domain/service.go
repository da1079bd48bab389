package domain

import (
	"time"
	"unicode/utf8"
)

// Field limits for services.
const (
	MaxServiceNameLength = 120
	MaxTagLength         = 120
)

// Service represents a tracked system whose status is reported.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the client-settable fields.
func (s *Service) Validate() error {
	var errs ValidationErrors
	switch n := utf8.RuneCountInString(s.Name); {
	case n == 0:
		errs = append(errs, NewValidationError("name", "a name is required"))
	case n > MaxServiceNameLength:
		errs = append(errs, NewValidationError("name", "name is too long"))
	}
	for _, tag := range s.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			errs = append(errs, NewValidationError("tags", "tag is too long"))
			break
		}
	}
	return errs.OrNil()
}
