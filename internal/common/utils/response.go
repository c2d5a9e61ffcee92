// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
    "encoding/json"
    "log"
    "net/http"

    "github.com/hyking/hyking-backend/internal/common/errs"
)

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
    RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
    response, err := json.Marshal(payload)
    if err != nil {
        w.WriteHeader(http.StatusInternalServerError)
        w.Write([]byte(`{"error":"Error marshaling JSON"}`))
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    w.Write(response)
}

// RespondWithServiceError maps a service error onto a status code. Internal
// failures are logged and answered with the generic fallback message.
func RespondWithServiceError(w http.ResponseWriter, err error, fallback string) {
    code := errs.HTTPStatus(err)
    if code == http.StatusInternalServerError {
        log.Printf("❌ %s: %v", fallback, err)
        RespondWithError(w, code, fallback)
        return
    }
    RespondWithError(w, code, err.Error())
}

// DecodeAndValidate decodes a JSON body into dst and validates its struct tags
func DecodeAndValidate(r *http.Request, dst interface{}) error {
    if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
        return err
    }
    return ValidateStruct(dst)
}
