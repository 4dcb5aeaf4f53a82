package validation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"comparecarts/internal/model"
)

// New returns a validator with the service's custom tags registered:
//
//	notblank  string is non-empty after trimming whitespace
//	category  string names one of model.Categories()
//	maxbytes  string is at most N bytes long, e.g. maxbytes=72
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseCategory(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// IsMissing reports whether err contains a failed presence check (required or notblank).
func IsMissing(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			return true
		}
	}
	return false
}

// FirstFailure returns the struct field and tag of the first failed rule.
func FirstFailure(err error) (field, tag string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", "", false
	}
	return verrs[0].Field(), verrs[0].Tag(), true
}
