package response_test

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshouse/bookshouse-server/internal/errors"
	"github.com/bookshouse/bookshouse-server/internal/http/response"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, map[string]string{"key": "value"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Message(rec, "You cannot upvote your own book", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "You cannot upvote your own book", env.Message)
	assert.Nil(t, env.Data)
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  int
	}{
		{"bad request", func(w http.ResponseWriter) { response.BadRequest(w, "bad", nil) }, http.StatusBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { response.Unauthorized(w, "no", nil) }, http.StatusUnauthorized},
		{"forbidden", func(w http.ResponseWriter) { response.Forbidden(w, "no", nil) }, http.StatusForbidden},
		{"not found", func(w http.ResponseWriter) { response.NotFound(w, "gone", nil) }, http.StatusNotFound},
		{"internal", func(w http.ResponseWriter) { response.InternalError(w, "boom", nil) }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.want, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHandleErrorDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	response.HandleError(rec, domainerrors.Forbidden("you are not the owner of this book"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "you are not the owner of this book", env.Error)
}

func TestHandleErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	response.HandleError(rec, assert.AnError, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal server error", env.Error)
}
