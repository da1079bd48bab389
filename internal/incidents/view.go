package incidents

import (
	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
)

// MessageView is the external representation of an incident message.
type MessageView struct {
	ID        string            `json:"id"`
	Status    domain.StatusCode `json:"status"`
	Text      string            `json:"text"`
	Timestamp string            `json:"timestamp"`
}

// NewMessageView renders a message.
func NewMessageView(m *domain.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Status:    m.Status,
		Text:      m.Text,
		Timestamp: view.FormatTime(m.Timestamp),
	}
}

// IncidentView is the external representation of an incident.
//
// The messages view carries only the base fields plus Messages. Otherwise
// Status and StartDate are always set, and the detail view adds
// LatestMessage, EndDate and CreatedAt.
type IncidentView struct {
	ID                 string                           `json:"id"`
	APIURL             string                           `json:"api_url"`
	Title              string                           `json:"title"`
	AffectedServiceIDs []string                         `json:"affected_service_ids"`
	Messages           view.Optional[[]MessageView]     `json:"messages,omitzero"`
	Status             view.Optional[domain.StatusCode] `json:"status,omitzero"`
	StartDate          view.Optional[string]            `json:"start_date,omitzero"`
	LatestMessage      view.Optional[MessageView]       `json:"latest_message,omitzero"`
	EndDate            view.Optional[string]            `json:"end_date,omitzero"`
	CreatedAt          view.Optional[string]            `json:"created_at,omitzero"`
}

// NewIncidentView renders an incident. Output depends only on its arguments.
func NewIncidentView(inc *domain.Incident, opts view.Options) IncidentView {
	serviceIDs := make([]string, len(inc.ServiceIDs))
	copy(serviceIDs, inc.ServiceIDs)

	v := IncidentView{
		ID:                 inc.ID,
		APIURL:             view.IncidentAPIURL(opts.APIVersion(), inc.ID),
		Title:              inc.Title,
		AffectedServiceIDs: serviceIDs,
	}

	if opts.Messages {
		if len(inc.Messages) == 0 {
			v.Messages = view.Null[[]MessageView]()
			return v
		}
		messages := make([]MessageView, 0, len(inc.Messages))
		for i := range inc.Messages {
			messages = append(messages, NewMessageView(&inc.Messages[i]))
		}
		v.Messages = view.Some(messages)
		return v
	}

	v.Status = view.OfPtr(inc.Status())
	v.StartDate = view.Some(view.FormatTime(inc.StartDate))

	if opts.Detail {
		if latest := inc.LatestMessage(); latest != nil {
			v.LatestMessage = view.Some(NewMessageView(latest))
		} else {
			v.LatestMessage = view.Null[MessageView]()
		}
		v.EndDate = view.OfPtr(view.FormatTimePtr(inc.EndDate))
		v.CreatedAt = view.Some(view.FormatTime(inc.CreatedAt))
	}

	return v
}

// NewIncidentViews renders a list of incidents.
func NewIncidentViews(incidents []*domain.Incident, opts view.Options) []IncidentView {
	views := make([]IncidentView, 0, len(incidents))
	for _, inc := range incidents {
		views = append(views, NewIncidentView(inc, opts))
	}
	return views
}
