package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes limits request bodies.
const MaxBodyBytes = 1 << 20

// Request decoding errors.
var (
	ErrContentType = errors.New("request content type did not match application/json")
	ErrInvalidJSON = errors.New("could not parse request data as JSON")
)

// DecodeJSON decodes an application/json request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return ErrContentType
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidJSON, err.Error())
	}
	return nil
}

// APIVersion reads the {version} route parameter, falling back to the default.
func APIVersion(r *http.Request) int {
	v, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || v <= 0 {
		return view.DefaultVersion
	}
	return v
}

// QueryFlag reports whether a query parameter is set to anything but "", "0" or "false".
func QueryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}
