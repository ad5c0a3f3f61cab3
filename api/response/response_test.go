package response

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"weighthub/domain/weight"
	"weighthub/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/weights", nil)
	c.Set(RequestIDKey, "req-1")
	return c, w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandleSuccessGeneric(t *testing.T) {
	type payload struct {
		Total int64 `json:"total"`
	}
	c, w := newContext()
	HandleSuccess(c, payload{Total: 3}, "ok")

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode[payload](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, int64(3), env.Data.Total)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, http.StatusOK, env.Code)
}

func TestHandleCreatedString(t *testing.T) {
	c, w := newContext()
	HandleCreated(c, "created", "Weight created")

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decode[string](t, w)
	assert.Equal(t, "created", env.Data)
	assert.Equal(t, "Weight created", env.Message)
}

func TestHandleAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
		field  string
	}{
		{"validation", weight.NewInvalidNameError("is required"), http.StatusBadRequest, errors.CodeValidation, "name"},
		{"not found", weight.NewWeightNotFoundError(9), http.StatusNotFound, errors.CodeWeightNotFound, ""},
		{"conflict", weight.NewConcurrentModificationError(9), http.StatusConflict, errors.CodeConcurrentModify, ""},
		{"disabled", weight.NewWeightDisabledError(9), http.StatusUnprocessableEntity, errors.CodeWeightDisabled, ""},
		{"artifact", weight.NewArtifactUnavailableError("sam", nil), http.StatusBadGateway, errors.CodeArtifactUnavailable, ""},
		{"rate", errors.TooManyRequests("slow down"), http.StatusTooManyRequests, errors.CodeTooManyRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			HandleAppError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			env := decode[any](t, w)
			assert.False(t, env.Success)
			assert.Equal(t, string(tt.code), env.Error)
			assert.Equal(t, tt.field, env.Field)
			assert.Equal(t, tt.status, env.Code)
			assert.Equal(t, "req-1", env.RequestID)
		})
	}
}

func TestHandleAppErrorHidesInternalMessage(t *testing.T) {
	c, w := newContext()
	HandleAppError(c, stdErrors.New("dial tcp 10.0.0.1:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode[any](t, w)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestHandleBadRequest(t *testing.T) {
	c, w := newContext()
	HandleBadRequest(c, stdErrors.New("unexpected EOF"), "Invalid request body")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode[any](t, w)
	assert.Equal(t, string(errors.CodeBadRequest), env.Error)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestStatusForUnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor("SOMETHING_ELSE"))
}
