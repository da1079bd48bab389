package incidents

import "errors"

// Incident errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrNotImplemented   = errors.New("not implemented")
	ErrUnknownServices  = errors.New("unknown services")
)
