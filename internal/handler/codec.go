package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes and validates the JSON request body into dst.
// It writes the error response itself and reports whether decoding succeeded.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				errorBody("payload_too_large", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
			return false
		}
		writeRequestError(w, "malformed request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeRequestError(w, validationMessage(err))
		return false
	}
	return true
}

// pathInt64 binds the named chi path parameter as an int64 using the OpenAPI
// "simple" style.
func pathInt64(r *http.Request, name string) (int64, error) {
	var v int64
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// queryParam binds the named query parameter into dst using the OpenAPI
// "form" style. Optional parameters should use a pointer dst.
func queryParam(r *http.Request, name string, required bool, dst any) error {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dst); err != nil {
		return fmt.Errorf("invalid query parameter %s", name)
	}
	return nil
}

// journeyID binds {id}, writing a 422 on failure.
func journeyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeRequestError(w, err.Error())
		return 0, false
	}
	return id, true
}
