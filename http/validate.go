package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// invocation is the validated view of a call: the method and target URL.
type invocation struct {
	Method string `validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS TRACE"`
	URL    string `validate:"required,url"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// validateRequest rejects a call before any I/O happens.
func validateRequest(method string, req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}

	err := requestValidator().Struct(invocation{Method: method, URL: req.URL})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return NewValidationError(validationMessage(fe), strings.ToLower(fe.Field()))
		}
		return NewValidationError(err.Error(), "")
	}

	u, err := url.Parse(req.URL)
	if err != nil || u.Host == "" {
		return NewValidationError("url must be absolute with a host", "url")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", strings.ToLower(fe.Field()))
	case "oneof":
		return fmt.Sprintf("unsupported method %q (must be one of: %s)", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("invalid url %q", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
}
