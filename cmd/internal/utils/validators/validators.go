package validators

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const DateLayout = time.DateOnly

var clockLayouts = []string{"15:04", time.TimeOnly}

// New returns a validator that reports json field names and knows the
// custom tags used by request structs.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("isodate", IsISODate)
	_ = validate.RegisterValidation("clocktime", IsClockTime)
	return validate
}

// IsISODate accepts calendar dates formatted as YYYY-MM-DD.
func IsISODate(fl validator.FieldLevel) bool {
	return matchesLayout(DateLayout, fl.Field().String())
}

// IsClockTime accepts zero-padded times of day formatted as HH:MM or HH:MM:SS.
func IsClockTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, layout := range clockLayouts {
		if matchesLayout(layout, value) {
			return true
		}
	}
	return false
}

// matchesLayout requires value to be exactly the canonical form of layout.
// time.Parse alone also accepts unpadded hours such as "9:00".
func matchesLayout(layout, value string) bool {
	t, err := time.Parse(layout, value)
	return err == nil && t.Format(layout) == value
}
