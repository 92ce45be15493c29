package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"CONTACTS_BACK-END/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names in messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes a single JSON value from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperr.ErrInvalidJSON(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.ErrInvalidJSON(errors.New("multiple JSON values"))
	}
	return nil
}

// ValidateRequest runs the struct's validate tags. Missing required fields
// produce missingMsg; other failures name the first offending field.
func ValidateRequest(req any, missingMsg string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrInternal(err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperr.ErrMissingFields(missingMsg)
		}
	}
	fe := verrs[0]
	return apperr.ErrInvalidField(fe.Field() + " must be one of: " + fe.Param())
}
