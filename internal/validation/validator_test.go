package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/bookshouse/bookshouse-server/internal/errors"
	"github.com/bookshouse/bookshouse-server/internal/validation"
)

type testRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Title    string `json:"book_title" validate:"required"`
}

func TestValidateSuccess(t *testing.T) {
	v := validation.New()

	req := testRequest{
		Email:    "test@example.com",
		Password: "password123",
		Title:    "A Book",
	}
	assert.NoError(t, v.Validate(req))
}

func TestValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       testRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: testRequest{
				Email:    "test@example.com",
				Password: "password123",
			},
			wantField: "book_title",
		},
		{
			name: "invalid email",
			req: testRequest{
				Email:    "not-an-email",
				Password: "password123",
				Title:    "A Book",
			},
			wantField: "email",
		},
		{
			name: "password too short",
			req: testRequest{
				Email:    "test@example.com",
				Password: "short",
				Title:    "A Book",
			},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domErr *domainerrors.Error
			if assert.True(t, domainerrors.As(err, &domErr)) {
				assert.Equal(t, http.StatusBadRequest, domErr.HTTPStatus())

				details, ok := domErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details, tt.wantField)
				}
			}
		})
	}
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Password: "password123", Title: "A Book"})
	assert.Error(t, err)

	var domErr *domainerrors.Error
	assert.True(t, domainerrors.As(err, &domErr))

	details, ok := domErr.Details.(map[string]string)
	if assert.True(t, ok) {
		assert.Contains(t, details, "email")
		assert.NotContains(t, details, "Email")
	}
}
