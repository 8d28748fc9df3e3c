// Package request decodes and validates incoming HTTP requests.
//
// Handlers call Bind for JSON bodies and PathID for {id}-style path
// parameters. Both write the 400 response themselves and report whether
// the handler may continue.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("full_name") rather than the Go
	// name ("FullName") so error messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Bind decodes the JSON body of r into dst and validates it.
// On failure it writes a 400 response and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

// PathID parses the named path parameter as a positive int64.
// On failure it writes a 400 response and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(fmt.Errorf("invalid %s: must be a positive integer", name)))
		return 0, false
	}
	return id, true
}

// QueryID parses an optional positive integer query parameter.
// A missing parameter yields 0.
func QueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return id, nil
}
