package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     error
	}{
		{name: "ok", contentType: "application/json", body: `{"name":"api"}`},
		{name: "charset param", contentType: "application/json; charset=utf-8", body: `{"name":"api"}`},
		{name: "wrong type", contentType: "text/plain", body: `{"name":"api"}`, wantErr: ErrContentType},
		{name: "missing type", body: `{"name":"api"}`, wantErr: ErrContentType},
		{name: "broken body", contentType: "application/json", body: `{"name":`, wantErr: ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			var v struct {
				Name string `json:"name"`
			}
			err := DecodeJSON(httptest.NewRecorder(), req, &v)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "api", v.Name)
		})
	}
}

func TestQueryFlag(t *testing.T) {
	tests := map[string]bool{
		"":            false,
		"?past=":      false,
		"?past=0":     false,
		"?past=false": false,
		"?past=1":     true,
		"?past=true":  true,
		"?past=yes":   true,
	}
	for query, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
		assert.Equal(t, want, QueryFlag(req, "past"), query)
	}
}

func TestHandleError(t *testing.T) {
	errMissing := errors.New("missing")
	mappings := []ErrorMapping{{Error: errMissing, Status: http.StatusNotFound, Message: "Object not found."}}

	t.Run("mapped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(context.Background(), rec, errors.Join(errMissing, errors.New("detail")), mappings)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Object not found.", decodeError(t, rec).Error)
	})

	t.Run("validation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := domain.ValidationErrors{
			domain.NewValidationError("name", "required"),
			domain.NewValidationError("status", "unknown"),
		}
		HandleError(context.Background(), rec, err, mappings)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, ValidationMessage, body.Error)
		assert.Equal(t, []FieldError{
			{Field: "name", Message: "required"},
			{Field: "status", Message: "unknown"},
		}, body.Details)
	})

	t.Run("unmapped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(context.Background(), rec, errors.New("boom"), mappings)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", decodeError(t, rec).Error)
	})
}

func TestNewValidator_FieldNames(t *testing.T) {
	type input struct {
		ServiceIDs []string `json:"service_ids" validate:"required"`
		Title      string   `json:"title,omitempty" validate:"required"`
		Note       string   `validate:"required"`
	}

	err := NewValidator().Struct(input{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(rec, err)

	fields := make([]string, 0)
	for _, d := range decodeError(t, rec).Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"service_ids", "title", "Note"}, fields)
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("throttles mutating requests", func(t *testing.T) {
		h := RateLimitMiddleware(rate.Limit(0.001), 2)(ok)
		serve := func(method string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
			return rec
		}

		assert.Equal(t, http.StatusNoContent, serve(http.MethodPost).Code)
		assert.Equal(t, http.StatusNoContent, serve(http.MethodPut).Code)

		rec := serve(http.MethodPost)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusNoContent, serve(http.MethodGet).Code)
	})

	t.Run("zero limit disables", func(t *testing.T) {
		h := RateLimitMiddleware(0, 0)(ok)
		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://status.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/services", nil)
	req.Header.Set("Origin", "https://status.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://status.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewValidator_StatusTag(t *testing.T) {
	type input struct {
		Status   string  `json:"status" validate:"required,status"`
		Optional *string `json:"optional" validate:"omitempty,status"`
	}

	v := NewValidator()
	assert.NoError(t, v.Struct(input{Status: "DOWN"}))

	ok := "ok"
	assert.NoError(t, v.Struct(input{Status: "warning", Optional: &ok}))

	bad := "meh"
	err := v.Struct(input{Status: "on-fire", Optional: &bad})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(rec, err)
	fields := make([]string, 0)
	for _, d := range decodeError(t, rec).Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"status", "optional"}, fields)
}
