package httputil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON names.
// It also knows the "status" tag, which accepts status catalog codes in any case.
// It panics if a custom tag cannot be registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("status", validateStatus); err != nil {
		panic(fmt.Sprintf("register status validation: %v", err))
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParseStatus(fl.Field().String())
	return err == nil
}
