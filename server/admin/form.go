package admin

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their form name, or json name for models
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	return v
}

// Validate checks input against its validate tags. Invalid fields are reported as a *ValidationError.
func Validate(input interface{}) error {
	return validateInput(input, &ValidationError{})
}

// validateInput runs the struct's validate tags and collects failures into a ValidationError.
func validateInput(input interface{}, verr *ValidationError) error {
	err := validate.Struct(input)
	if err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		for _, fieldErr := range fieldErrs {
			verr.add(fieldErr.Field(), fieldMessage(fieldErr))
		}
	}

	return verr.orNil()
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %v characters.", fieldErr.Param())
	case "oneof":
		return "Select a valid choice."
	}

	return "Enter a valid value."
}

// ---------------------------------------------------------------------------------//
// Form helpers
// --------------------------------------------------------------------------------//

func formString(form url.Values, key string) string {
	return strings.TrimSpace(form.Get(key))
}

// formOptionalString returns nil for a blank value.
func formOptionalString(form url.Values, key string) *string {
	value := formString(form, key)
	if value == "" {
		return nil
	}
	return &value
}

func formCheckbox(form url.Values, key string) bool {
	switch strings.ToLower(form.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// formOptionalID returns nil when the key is blank, which selects the create path of save actions.
func formOptionalID(form url.Values, key string, verr *ValidationError) *uint {
	value := formString(form, key)
	if value == "" {
		return nil
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		verr.add(key, "Enter a valid identifier.")
		return nil
	}

	uid := uint(id)
	return &uid
}

func formRequiredID(form url.Values, key string, verr *ValidationError) uint {
	if formString(form, key) == "" {
		verr.add(key, "This field is required.")
		return 0
	}

	id := formOptionalID(form, key, verr)
	if id == nil {
		return 0
	}
	return *id
}

func formInt(form url.Values, key string, verr *ValidationError) int {
	value := formString(form, key)
	if value == "" {
		return 0
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		verr.add(key, "Enter a whole number.")
		return 0
	}
	return number
}
