package domain

import (
	"errors"
	"fmt"
	"strings"
)

// StatusCode identifies a status level in the catalog.
type StatusCode string

// Status codes, from least to most severe.
const (
	StatusOK      StatusCode = "ok"
	StatusInfo    StatusCode = "info"
	StatusWarning StatusCode = "warning"
	StatusDown    StatusCode = "down"
)

// ErrUnknownStatus is returned for codes that are not in the catalog.
var ErrUnknownStatus = errors.New("unknown status")

// StatusLevel is one entry of the status catalog.
type StatusLevel struct {
	Code     StatusCode `json:"code"`
	Label    string     `json:"label"`
	Priority int        `json:"priority"`
}

// statusLevels is the status catalog, ordered by priority.
var statusLevels = []StatusLevel{
	{Code: StatusOK, Label: "Ok", Priority: 0},
	{Code: StatusInfo, Label: "Info", Priority: 10},
	{Code: StatusWarning, Label: "Warning", Priority: 20},
	{Code: StatusDown, Label: "Down", Priority: 30},
}

var statusIndex = func() map[StatusCode]StatusLevel {
	m := make(map[StatusCode]StatusLevel, len(statusLevels))
	for _, l := range statusLevels {
		m[l.Code] = l
	}
	return m
}()

// IsValid checks if the status code is in the catalog.
func (c StatusCode) IsValid() bool {
	_, ok := statusIndex[c]
	return ok
}

// Ptr returns a pointer to a copy of c.
func (c StatusCode) Ptr() *StatusCode {
	return &c
}

// ParseStatus normalizes s and checks it against the catalog.
func ParseStatus(s string) (StatusCode, error) {
	code := StatusCode(strings.ToLower(strings.TrimSpace(s)))
	if !code.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return code, nil
}

// StatusLevels returns a copy of the catalog ordered by priority.
func StatusLevels() []StatusLevel {
	levels := make([]StatusLevel, len(statusLevels))
	copy(levels, statusLevels)
	return levels
}

// StatusCodes returns all status codes ordered by priority.
func StatusCodes() []StatusCode {
	codes := make([]StatusCode, 0, len(statusLevels))
	for _, l := range statusLevels {
		codes = append(codes, l.Code)
	}
	return codes
}

// LookupStatus returns the catalog entry for code.
func LookupStatus(code StatusCode) (StatusLevel, error) {
	l, ok := statusIndex[code]
	if !ok {
		return StatusLevel{}, fmt.Errorf("%w: %q", ErrUnknownStatus, code)
	}
	return l, nil
}

// PriorityOf returns the priority of code.
func PriorityOf(code StatusCode) (int, error) {
	l, err := LookupStatus(code)
	if err != nil {
		return 0, err
	}
	return l.Priority, nil
}

// StatusLabel returns the display label of code, or the code itself when unknown.
func StatusLabel(code StatusCode) string {
	if l, ok := statusIndex[code]; ok {
		return l.Label
	}
	return string(code)
}

// WorstStatus returns the code with the highest priority.
// Nil entries and unknown codes are ignored; returns nil if nothing is left.
func WorstStatus(codes []*StatusCode) *StatusCode {
	var worst *StatusCode
	worstPriority := -1
	for _, c := range codes {
		if c == nil {
			continue
		}
		l, ok := statusIndex[*c]
		if !ok {
			continue
		}
		if l.Priority > worstPriority {
			worstPriority = l.Priority
			worst = l.Code.Ptr()
		}
	}
	return worst
}
