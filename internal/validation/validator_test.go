package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/swastiapp/swasti-server/internal/errors"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=100"`
}

func TestValidateOK(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{
		Email:    "mira@example.com",
		Password: "wellness-first",
		Name:     "Mira",
	})
	assert.NoError(t, err)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")
}

func TestValidateCollectsAllFailures(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "password is required")
}
