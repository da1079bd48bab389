// Package dashboard renders the public HTML status board.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/incidents"
)

// DefaultPastDays is the number of previous days shown on the index page.
const DefaultPastDays = 5

// ServiceCatalog reads services.
type ServiceCatalog interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error)
}

// IncidentLister lists incidents affecting a service.
type IncidentLister interface {
	ListIncidentsByService(ctx context.Context, serviceID string, state incidents.State) ([]*domain.Incident, error)
}

// DayStatus is the worst status reported for a service on one day.
// Status is nil when nothing was reported that day.
type DayStatus struct {
	Day    time.Time
	Status *domain.StatusCode
}

// ServiceRow is one line of the index page.
type ServiceRow struct {
	Service domain.Service
	Status  *domain.StatusCode
	Past    []DayStatus
}

// IndexPage is the data of the index page.
type IndexPage struct {
	Statuses []domain.StatusLevel
	Default  domain.StatusLevel
	Days     []time.Time
	Services []ServiceRow
	Now      time.Time
}

// ServicePage is the data of a service page.
type ServicePage struct {
	Statuses []domain.StatusLevel
	Default  domain.StatusLevel
	Service  domain.Service
	Status   *domain.StatusCode
	Current  []*domain.Incident
	Past     []*domain.Incident
	Now      time.Time
}

// Board assembles dashboard pages.
type Board struct {
	catalog   ServiceCatalog
	incidents IncidentLister
	pastDays  int
	now       func() time.Time
}

// NewBoard creates a board showing pastDays previous days on the index page.
func NewBoard(catalog ServiceCatalog, incidents IncidentLister, pastDays int) *Board {
	if pastDays <= 0 {
		pastDays = DefaultPastDays
	}
	return &Board{
		catalog:   catalog,
		incidents: incidents,
		pastDays:  pastDays,
		now:       time.Now,
	}
}

// Index builds the index page.
func (b *Board) Index(ctx context.Context) (*IndexPage, error) {
	now := b.now().UTC()
	days := PastDays(now, b.pastDays)

	services, err := b.catalog.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	rows := make([]ServiceRow, 0, len(services))
	for _, svc := range services {
		all, err := b.incidents.ListIncidentsByService(ctx, svc.ID, incidents.StateAll)
		if err != nil {
			return nil, fmt.Errorf("list incidents of %s: %w", svc.ID, err)
		}
		rows = append(rows, ServiceRow{
			Service: svc,
			Status:  CurrentStatus(all, now),
			Past:    DailyStatuses(all, days),
		})
	}

	return &IndexPage{
		Statuses: domain.StatusLevels(),
		Default:  defaultLevel(),
		Days:     days,
		Services: rows,
		Now:      now,
	}, nil
}

// Service builds the page of the service with slug.
func (b *Board) Service(ctx context.Context, slug string) (*ServicePage, error) {
	now := b.now().UTC()

	svc, err := b.catalog.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	all, err := b.incidents.ListIncidentsByService(ctx, svc.ID, incidents.StateAll)
	if err != nil {
		return nil, fmt.Errorf("list incidents of %s: %w", svc.ID, err)
	}

	page := &ServicePage{
		Statuses: domain.StatusLevels(),
		Default:  defaultLevel(),
		Service:  *svc,
		Status:   CurrentStatus(all, now),
		Now:      now,
	}
	for _, inc := range all {
		if inc.IsCurrent(now) {
			page.Current = append(page.Current, inc)
		} else {
			page.Past = append(page.Past, inc)
		}
	}
	return page, nil
}

// PastDays returns the n days before now's day, most recent first, at UTC midnight.
func PastDays(now time.Time, n int) []time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, today.AddDate(0, 0, -i))
	}
	return days
}

// CurrentStatus returns the worst latest-message status among incidents open at now.
func CurrentStatus(list []*domain.Incident, now time.Time) *domain.StatusCode {
	statuses := make([]*domain.StatusCode, 0, len(list))
	for _, inc := range list {
		if inc.IsCurrent(now) {
			statuses = append(statuses, inc.Status())
		}
	}
	return domain.WorstStatus(statuses)
}

// DailyStatuses returns, for each day, the worst status of the messages
// posted during that UTC day.
func DailyStatuses(list []*domain.Incident, days []time.Time) []DayStatus {
	out := make([]DayStatus, 0, len(days))
	for _, day := range days {
		end := day.AddDate(0, 0, 1)
		var statuses []*domain.StatusCode
		for _, inc := range list {
			for _, m := range inc.Messages {
				if !m.Timestamp.Before(day) && m.Timestamp.Before(end) {
					statuses = append(statuses, m.Status.Ptr())
				}
			}
		}
		out = append(out, DayStatus{Day: day, Status: domain.WorstStatus(statuses)})
	}
	return out
}

func defaultLevel() domain.StatusLevel {
	level, _ := domain.LookupStatus(domain.StatusOK)
	return level
}
