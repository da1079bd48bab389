package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxIncidentTitleLength limits incident titles.
const MaxIncidentTitleLength = 300

// Message is one timestamped status update within an incident.
type Message struct {
	ID        string     `json:"id"`
	Status    StatusCode `json:"status"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}

// Validate checks the message status and text.
func (m *Message) Validate() error {
	var errs ValidationErrors
	if !m.Status.IsValid() {
		errs = append(errs, NewValidationError("status", `status "`+string(m.Status)+`" is not valid`))
	}
	if strings.TrimSpace(m.Text) == "" {
		errs = append(errs, NewValidationError("message", "a message is required"))
	}
	return errs.OrNil()
}

// Incident is a time-bounded event affecting one or more services.
// Messages are kept sorted by timestamp, oldest first.
type Incident struct {
	ID         string     `json:"id"`
	ServiceIDs []string   `json:"service_ids"`
	Title      string     `json:"title"`
	Messages   []Message  `json:"messages"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AddMessage validates and appends a message, then restores timeline order.
// A zero timestamp is replaced with now.
func (i *Incident) AddMessage(id string, status StatusCode, text string, timestamp, now time.Time) (*Message, error) {
	if timestamp.IsZero() {
		timestamp = now
	}
	m := Message{
		ID:        id,
		Status:    status,
		Text:      text,
		Timestamp: timestamp,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	i.Messages = append(i.Messages, m)
	i.SortMessages()
	return &m, nil
}

// SortMessages orders messages by timestamp. The sort is stable, so messages
// sharing a timestamp keep insertion order.
func (i *Incident) SortMessages() {
	slices.SortStableFunc(i.Messages, func(a, b Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// LatestMessage returns the message with the greatest timestamp, or nil.
func (i *Incident) LatestMessage() *Message {
	if len(i.Messages) == 0 {
		return nil
	}
	latest := 0
	for idx := range i.Messages {
		if !i.Messages[idx].Timestamp.Before(i.Messages[latest].Timestamp) {
			latest = idx
		}
	}
	m := i.Messages[latest]
	return &m
}

// Status returns the status of the latest message, or nil without messages.
func (i *Incident) Status() *StatusCode {
	if m := i.LatestMessage(); m != nil {
		return m.Status.Ptr()
	}
	return nil
}

// IsCurrent reports whether the incident is open at now:
// no end date, or an end date in the future.
func (i *Incident) IsCurrent(now time.Time) bool {
	return i.EndDate == nil || i.EndDate.After(now)
}

// Validate checks the incident-level invariants.
func (i *Incident) Validate() error {
	var errs ValidationErrors
	if len(i.ServiceIDs) == 0 {
		errs = append(errs, NewValidationError("service_ids", "at least one service is required"))
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(i.Title)); {
	case n == 0:
		errs = append(errs, NewValidationError("title", "a title is required"))
	case n > MaxIncidentTitleLength:
		errs = append(errs, NewValidationError("title", "title is too long"))
	}
	if i.EndDate != nil && i.EndDate.Before(i.StartDate) {
		errs = append(errs, NewValidationError("end_date", "end_date is before start_date"))
	}
	return errs.OrNil()
}

// AffectsService reports whether serviceID is among the affected services.
func (i *Incident) AffectsService(serviceID string) bool {
	return slices.Contains(i.ServiceIDs, serviceID)
}
