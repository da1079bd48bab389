package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *mockRepository, *mockIncidentReader) {
	repo := newMockRepository()
	reader := newMockIncidentReader()
	return NewService(repo, reader), repo, reader
}

func TestService_CreateService_AssignsSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateService(ctx, CreateServiceInput{Name: "  Public API  "})
	require.NoError(t, err)
	assert.Equal(t, "Public API", first.Name)
	assert.Equal(t, "public-api", first.Slug)
	assert.Equal(t, []string{}, first.Tags)

	second, err := svc.CreateService(ctx, CreateServiceInput{Name: "Public API"})
	require.NoError(t, err)
	assert.Equal(t, "public-api-1", second.Slug)

	third, err := svc.CreateService(ctx, CreateServiceInput{Name: "public api!"})
	require.NoError(t, err)
	assert.Equal(t, "public-api-2", third.Slug)
}

func TestService_CreateService_FallbackSlug(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "日本"})
	require.NoError(t, err)
	assert.Equal(t, "service", created.Slug)
}

func TestService_CreateService_LongNameTruncatesSlug(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: strings.Repeat("a", 120)})
	require.NoError(t, err)
	assert.Len(t, created.Slug, maxSlugBaseLength)
}

func TestService_CreateService_RetriesOnConcurrentSlug(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.createErrs = []error{ErrSlugExists, ErrSlugExists}

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Race"})
	require.NoError(t, err)
	assert.Equal(t, "race", created.Slug)
	assert.Equal(t, 3, repo.creates)
}

func TestService_CreateService_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, repo, _ := newTestService()
	for range maxCreateAttempts {
		repo.createErrs = append(repo.createErrs, ErrSlugExists)
	}

	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Race"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlugExists)
	assert.Equal(t, maxCreateAttempts, repo.creates)
}

func TestService_CreateService_RepositoryError(t *testing.T) {
	svc, repo, _ := newTestService()
	boom := errors.New("boom")
	repo.createErrs = []error{boom}

	_, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Broken"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.creates)
}

func TestService_CreateService_Validation(t *testing.T) {
	svc, repo, _ := newTestService()

	tests := []struct {
		name  string
		input CreateServiceInput
		field string
	}{
		{name: "empty name", input: CreateServiceInput{Name: "   "}, field: "name"},
		{name: "long name", input: CreateServiceInput{Name: strings.Repeat("x", 121)}, field: "name"},
		{name: "long tag", input: CreateServiceInput{Name: "ok", Tags: []string{strings.Repeat("t", 121)}}, field: "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateService(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var errs domain.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
	assert.Zero(t, repo.creates)
}

func TestService_ComputeSlug_IdempotentForOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Mail"})
	require.NoError(t, err)

	again, err := svc.ComputeSlug(ctx, "Mail", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, again)

	other, err := svc.ComputeSlug(ctx, "Mail", "")
	require.NoError(t, err)
	assert.Equal(t, "mail-1", other)
}

func TestService_UpdateService_KeepsSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Old Name", Description: "keep me"})
	require.NoError(t, err)

	name := "New Name"
	tags := []string{" a ", "", "b"}
	updated, err := svc.UpdateService(ctx, created.ID, UpdateServiceInput{Name: &name, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old-name", updated.Slug)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)

	stored, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", stored.Name)
}

func TestService_UpdateService_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Valid"})
	require.NoError(t, err)

	empty := "  "
	_, err = svc.UpdateService(ctx, created.ID, UpdateServiceInput{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Valid", stored.Name)
}

func TestService_GetService_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetService(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = svc.GetService(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_GetService_NonCanonicalID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Search"})
	require.NoError(t, err)

	ids := []string{
		"urn:uuid:" + created.ID,
		"{" + created.ID + "}",
		strings.ToUpper(created.ID),
		strings.ReplaceAll(created.ID, "-", ""),
	}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			got, err := svc.GetService(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	}

	name := "Search v2"
	updated, err := svc.UpdateService(ctx, "urn:uuid:"+created.ID, UpdateServiceInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
}

func TestService_DeleteService_NotImplemented(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Stays"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteService(ctx, created.ID), ErrNotImplemented)
	assert.ErrorIs(t, svc.DeleteService(ctx, "missing"), ErrNotImplemented)

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_Status(t *testing.T) {
	svc, _, reader := newTestService()
	ctx := context.Background()

	status, err := svc.Status(ctx, "svc")
	require.NoError(t, err)
	assert.Nil(t, status)

	reader.current["svc"] = []*domain.Incident{
		incidentWithStatus("a", domain.StatusDown, domain.StatusInfo),
		incidentWithStatus("b", domain.StatusWarning),
		incidentWithStatus("c"),
	}
	status, err = svc.Status(ctx, "svc")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, domain.StatusWarning, *status)
}

func TestService_View(t *testing.T) {
	svc, _, reader := newTestService()
	ctx := context.Background()

	created, err := svc.CreateService(ctx, CreateServiceInput{Name: "Viewed", Tags: []string{"x"}})
	require.NoError(t, err)

	reader.current[created.ID] = []*domain.Incident{incidentWithStatus("open", domain.StatusDown)}
	reader.past[created.ID] = []*domain.Incident{incidentWithStatus("closed", domain.StatusOK)}

	v, err := svc.View(ctx, created, view.Options{Detail: true, Past: true})
	require.NoError(t, err)
	require.NotNil(t, v.Status)
	assert.Equal(t, domain.StatusDown, *v.Status)
	assert.Equal(t, []string{"open"}, v.CurrentIncidents)
	require.NotNil(t, v.PastIncidents.Value)
	assert.Equal(t, []string{"closed"}, *v.PastIncidents.Value)
	assert.Equal(t, "/services/viewed", v.URL)

	views, err := svc.ListViews(ctx, view.Options{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].PastIncidents.Set)
	assert.False(t, views[0].Description.Set)
}
