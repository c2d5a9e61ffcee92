package errs

import (
    "errors"
    "fmt"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
    assert.Equal(t, http.StatusOK, HTTPStatus(nil))
    assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("profile %w", ErrNotFound)))
    assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrapped: %w", fmt.Errorf("action %w", ErrInvalidArgument))))
    assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
    assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrPermissionDenied))
    assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("driver: bad connection")))
}
