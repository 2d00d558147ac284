package common

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into v and validates it, writing a 400 response on failure.
func BindJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid payload", fields)
			return false
		}
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	return true
}
