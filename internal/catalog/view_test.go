package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDomainService() *domain.Service {
	return &domain.Service{
		ID:          "11111111-2222-3333-4444-555555555555",
		Name:        "Billing",
		Slug:        "billing",
		Description: "Invoices and payments",
		CreatedAt:   time.Date(2024, 3, 1, 11, 30, 45, 0, time.UTC),
	}
}

func TestNewServiceView_List(t *testing.T) {
	v := NewServiceView(testDomainService(), nil, nil, nil, view.Options{})

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "11111111-2222-3333-4444-555555555555",
		"name": "Billing",
		"url": "/services/billing",
		"api_url": "/api/v1/services/11111111-2222-3333-4444-555555555555",
		"status": null,
		"tags": [],
		"current_incidents": null
	}`, string(b))
}

func TestNewServiceView_Detail(t *testing.T) {
	s := testDomainService()
	s.Tags = []string{"core"}
	current := []*domain.Incident{{ID: "inc-1"}}

	v := NewServiceView(s, domain.StatusWarning.Ptr(), current, nil, view.Options{Version: 2, Detail: true, Past: true})

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "11111111-2222-3333-4444-555555555555",
		"name": "Billing",
		"url": "/services/billing",
		"api_url": "/api/v2/services/11111111-2222-3333-4444-555555555555",
		"status": "warning",
		"tags": ["core"],
		"current_incidents": ["inc-1"],
		"description": "Invoices and payments",
		"created_at": "Fri, 01 Mar 2024 11:30:45 GMT",
		"past_incidents": null
	}`, string(b))
}

func TestNewServiceView_PastIncidents(t *testing.T) {
	past := []*domain.Incident{{ID: "old-1"}, {ID: "old-2"}}

	v := NewServiceView(testDomainService(), nil, nil, past, view.Options{Past: true})

	require.True(t, v.PastIncidents.Set)
	require.NotNil(t, v.PastIncidents.Value)
	assert.Equal(t, []string{"old-1", "old-2"}, *v.PastIncidents.Value)
	assert.False(t, v.Description.Set)
}

func TestNewServiceView_Deterministic(t *testing.T) {
	s := testDomainService()
	opts := view.Options{Detail: true}

	a, err := json.Marshal(NewServiceView(s, nil, nil, nil, opts))
	require.NoError(t, err)
	b, err := json.Marshal(NewServiceView(s, nil, nil, nil, opts))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestServiceView_RoundTrip(t *testing.T) {
	withTags := testDomainService()
	withTags.Tags = []string{"core", "payments"}
	current := []*domain.Incident{{ID: "inc-1"}, {ID: "inc-2"}}
	past := []*domain.Incident{{ID: "inc-0"}}

	tests := []struct {
		name string
		view ServiceView
	}{
		{name: "list", view: NewServiceView(testDomainService(), nil, nil, nil, view.Options{})},
		{name: "list with status", view: NewServiceView(withTags, domain.StatusDown.Ptr(), current, nil, view.Options{})},
		{name: "detail", view: NewServiceView(withTags, nil, nil, nil, view.Options{Detail: true})},
		{name: "past empty", view: NewServiceView(testDomainService(), nil, nil, nil, view.Options{Detail: true, Past: true})},
		{name: "past", view: NewServiceView(withTags, domain.StatusInfo.Ptr(), current, past, view.Options{Version: 3, Detail: true, Past: true})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := json.Marshal(tt.view)
			require.NoError(t, err)

			var decoded ServiceView
			require.NoError(t, json.Unmarshal(first, &decoded))
			assert.Equal(t, tt.view, decoded)

			second, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}
