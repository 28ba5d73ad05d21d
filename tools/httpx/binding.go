package httpx

import (
	stderr "errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BindingErrors flattens gin/validator binding errors into field-level
// messages for the envelope.
func BindingErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !stderr.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fe.Field() + " failed " + fe.Tag() + " validation",
		})
	}
	return out
}
