package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// RandomName returns prefix with a short random suffix, so tests sharing a
// database do not collide on service names.
func RandomName(prefix string) string {
	return prefix + " " + strings.SplitN(uuid.NewString(), "-", 2)[0]
}
