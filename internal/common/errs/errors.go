// internal/common/errs/errors.go
// Error categories shared by every feature package. Feature sentinels wrap one
// of these so handlers can map them to a status code with errors.Is.

package errs

import (
    "errors"
    "net/http"
)

var (
    ErrNotFound         = errors.New("not found")
    ErrInvalidArgument  = errors.New("invalid argument")
    ErrConflict         = errors.New("conflict")
    ErrPermissionDenied = errors.New("permission denied")
    ErrInternal         = errors.New("internal error")
)

// HTTPStatus maps an error to the status code handlers respond with
func HTTPStatus(err error) int {
    switch {
    case err == nil:
        return http.StatusOK
    case errors.Is(err, ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, ErrInvalidArgument):
        return http.StatusBadRequest
    case errors.Is(err, ErrConflict):
        return http.StatusConflict
    case errors.Is(err, ErrPermissionDenied):
        return http.StatusForbidden
    default:
        return http.StatusInternalServerError
    }
}
