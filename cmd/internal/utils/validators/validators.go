package validators

import (
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
	"time"
)

// New returns a validator with the project's custom tags registered and
// field names reported by their json tag.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(JSONTagName)
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	return validate
}

// IsIso8601 accepts RFC 3339 timestamps, e.g. 2030-01-01T10:00:00Z.
func IsIso8601(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func JSONTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
