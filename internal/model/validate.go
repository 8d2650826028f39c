package model

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	pkgerrors "campuscomplaint/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks the struct tags of a decoded record, or of every record in a slice.
func Validate(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := validatorInstance().Struct(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return validatorInstance().Struct(v)
}

// ValidateInput checks user input before it is sent and reports the first failing field
// as a validation error the front-end can show as is.
func ValidateInput(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return pkgerrors.Wrap(err, pkgerrors.ValidationFailed)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, field)
	case "eqfield":
		return pkgerrors.ValidationError(pkgerrors.PasswordMismatch, field)
	case "len", "numeric":
		if field == "mobileNumber" {
			return pkgerrors.ValidationError(pkgerrors.InvalidMobileNumber, field)
		}
		return pkgerrors.ValidationError(pkgerrors.InvalidFormat, field)
	case "email":
		return pkgerrors.ValidationError(pkgerrors.InvalidFormat, field)
	default:
		return pkgerrors.ValidationError(pkgerrors.ValidationFailed, field)
	}
}
