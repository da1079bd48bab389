package catalog

import "errors"

// Catalog errors.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrSlugExists      = errors.New("slug already exists")
	ErrSlugExhausted   = errors.New("no free slug available")
	ErrNotImplemented  = errors.New("not implemented")
)
