package view

import (
	"fmt"
	"net/url"
)

// ServiceURL returns the dashboard page of a service.
func ServiceURL(slug string) string {
	return "/services/" + url.PathEscape(slug)
}

// ServiceAPIURL returns the API resource of a service.
func ServiceAPIURL(version int, id string) string {
	return fmt.Sprintf("/api/v%d/services/%s", version, url.PathEscape(id))
}

// IncidentAPIURL returns the API resource of an incident.
func IncidentAPIURL(version int, id string) string {
	return fmt.Sprintf("/api/v%d/incidents/%s", version, url.PathEscape(id))
}
