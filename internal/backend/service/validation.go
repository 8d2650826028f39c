package service

import (
	"regexp"
	"strings"

	pkgerrors "campuscomplaint/pkg/errors"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

func requireField(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, field)
	}
	return nil
}

func validateMobile(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return pkgerrors.ValidationError(pkgerrors.InvalidMobileNumber, "mobileNumber")
	}
	return nil
}

type field struct {
	name  string
	value string
}

// requireFields reports the first empty field in order.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if err := requireField(f.value, f.name); err != nil {
			return err
		}
	}
	return nil
}
