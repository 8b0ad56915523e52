package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hospital-ops/pkg/errors"
)

// Enum is implemented by closed string enumerations.
type Enum interface {
	Valid() bool
}

// Validator validates request structs and converts failures into
// field-level application errors.
type Validator struct {
	validate *validator.Validate
}

var messages = map[string]string{
	"required":    "is required",
	"required_if": "is required",
	"email":       "must be a valid email",
	"enum":        "is not an allowed value",
	"oneof":       "is not an allowed value",
	"datetime":    "must be a date in YYYY-MM-DD format",
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// enum delegates to the field's own Valid method
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(Enum)
		return ok && e.Valid()
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a Validation AppError listing every
// offending field, or nil.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest("invalid request", err)
	}

	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}

	return errors.Validation(summary(fields), fields)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func summary(fields []errors.FieldError) string {
	if len(fields) == 1 {
		return fmt.Sprintf("%s %s", fields[0].Field, fields[0].Message)
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}
