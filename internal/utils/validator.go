// internal/utils/validator.go
package utils

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/prop-catalog/internal/apperrors"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func init() {
	validate = validator.New()

	// Report JSON field names so messages match what clients sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("image_ref", validateImageRef)
	validate.RegisterValidation("slug", validateSlug)
}

// Validate runs struct validation and converts failures into a validation
// error whose details list every offending field.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	details := GetValidationErrors(err)
	if len(details) == 0 {
		return apperrors.Validation(err.Error())
	}

	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	return apperrors.ValidationWithDetails("invalid fields: "+strings.Join(fields, ", "), details)
}

// IsImageRef reports whether ref is a root-relative path or an absolute http(s) URL.
func IsImageRef(ref string) bool {
	if strings.HasPrefix(ref, "/") {
		return !strings.HasPrefix(ref, "//") && !strings.ContainsAny(ref, " \t\n")
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func validateImageRef(fl validator.FieldLevel) bool {
	return IsImageRef(fl.Field().String())
}

func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(e),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// fieldPath drops the root struct name: "FurniturePayload.category_ids[0]" -> "category_ids[0]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return e.Field() + " must contain at least " + e.Param() + " item(s)"
		}
		if e.Kind() == reflect.String {
			return e.Field() + " must be at least " + e.Param() + " characters"
		}
		return e.Field() + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return e.Field() + " must be at most " + e.Param() + " characters"
		}
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "image_ref":
		return e.Field() + " must be a path starting with / or an absolute http(s) URL"
	case "slug":
		return e.Field() + " may only contain lowercase letters, digits and single hyphens"
	default:
		return e.Field() + " is invalid"
	}
}
