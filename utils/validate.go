package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	tzOffsetPattern = regexp.MustCompile(`^[+-]\d{2}:\d{2}$`)
)

// GetValidator returns the validator shared with gin's binding engine, so
// request binding and response shape checks apply the same `binding` tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate = v
		} else {
			validate = validator.New()
			validate.SetTagName("binding")
		}
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("tzoffset", func(fl validator.FieldLevel) bool {
			return tzOffsetPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct checks s against its binding tags.
func ValidateStruct(s any) error {
	return GetValidator().Struct(s)
}

// FieldErrors flattens validator errors into field -> message.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be less than " + fe.Param() + " characters"
	case "uuid":
		return fe.Field() + " must be a valid UUID"
	case "tzoffset":
		return "Invalid timezone format"
	default:
		return fe.Field() + " is invalid"
	}
}
