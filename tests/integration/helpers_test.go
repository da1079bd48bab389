//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/bissquit/whiskerboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

type createdResponse struct {
	ID     string `json:"id"`
	APIURL string `json:"api_url"`
}

type serviceResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	APIURL           string    `json:"api_url"`
	Status           *string   `json:"status"`
	Tags             []string  `json:"tags"`
	CurrentIncidents []string  `json:"current_incidents"`
	Description      string    `json:"description"`
	CreatedAt        string    `json:"created_at"`
	PastIncidents    *[]string `json:"past_incidents"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type incidentResponse struct {
	ID                 string            `json:"id"`
	APIURL             string            `json:"api_url"`
	Title              string            `json:"title"`
	AffectedServiceIDs []string          `json:"affected_service_ids"`
	Status             *string           `json:"status"`
	StartDate          string            `json:"start_date"`
	EndDate            *string           `json:"end_date"`
	CreatedAt          string            `json:"created_at"`
	LatestMessage      *messageResponse  `json:"latest_message"`
	Messages           []messageResponse `json:"messages"`
}

// createTestService creates a service and returns its id.
func createTestService(t *testing.T, client *testutil.Client, name string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/services", map[string]any{
		"name":        name,
		"description": "integration test service",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createdResponse
	testutil.DecodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}

// createTestIncident opens an incident on serviceIDs and returns its id.
func createTestIncident(t *testing.T, client *testutil.Client, title, status string, serviceIDs ...string) string {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents", map[string]any{
		"service_ids": serviceIDs,
		"title":       title,
		"message":     "Investigating.",
		"status":      status,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createdResponse
	testutil.DecodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func getService(t *testing.T, client *testutil.Client, path string) serviceResponse {
	t.Helper()

	resp, err := client.GET(path)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var svc serviceResponse
	testutil.DecodeJSON(t, resp, &svc)
	return svc
}

func getIncident(t *testing.T, client *testutil.Client, id string) incidentResponse {
	t.Helper()

	resp, err := client.GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var inc incidentResponse
	testutil.DecodeJSON(t, resp, &inc)
	return inc
}

// slugOf extracts the slug from a service's dashboard URL.
func slugOf(svc serviceResponse) string {
	return strings.TrimPrefix(svc.URL, "/services/")
}
