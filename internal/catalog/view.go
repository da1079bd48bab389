package catalog

import (
	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
)

// ServiceView is the external representation of a service.
// CurrentIncidents and PastIncidents are null when empty.
type ServiceView struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	URL              string                  `json:"url"`
	APIURL           string                  `json:"api_url"`
	Status           *domain.StatusCode      `json:"status"`
	Tags             []string                `json:"tags"`
	CurrentIncidents []string                `json:"current_incidents"`
	Description      view.Optional[string]   `json:"description,omitzero"`
	CreatedAt        view.Optional[string]   `json:"created_at,omitzero"`
	PastIncidents    view.Optional[[]string] `json:"past_incidents,omitzero"`
}

// NewServiceView renders a service. Output depends only on its arguments.
func NewServiceView(s *domain.Service, status *domain.StatusCode, current, past []*domain.Incident, opts view.Options) ServiceView {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}

	v := ServiceView{
		ID:               s.ID,
		Name:             s.Name,
		URL:              view.ServiceURL(s.Slug),
		APIURL:           view.ServiceAPIURL(opts.APIVersion(), s.ID),
		Status:           status,
		Tags:             tags,
		CurrentIncidents: incidentIDs(current),
	}

	if opts.Detail {
		v.Description = view.Some(s.Description)
		v.CreatedAt = view.Some(view.FormatTime(s.CreatedAt))
	}

	if opts.Past {
		if ids := incidentIDs(past); ids != nil {
			v.PastIncidents = view.Some(ids)
		} else {
			v.PastIncidents = view.Null[[]string]()
		}
	}

	return v
}

// CreatedView is returned after a successful create.
type CreatedView struct {
	ID     string `json:"id"`
	APIURL string `json:"api_url"`
}

func incidentIDs(incidents []*domain.Incident) []string {
	if len(incidents) == 0 {
		return nil
	}
	ids := make([]string, 0, len(incidents))
	for _, inc := range incidents {
		ids = append(ids, inc.ID)
	}
	return ids
}
