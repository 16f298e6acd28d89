package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "taskboard/internal/errors"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Status   string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}

func TestValidator_CollectsEveryOffendingField(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{
		Email:    "not-an-email",
		Password: "abc",
		Status:   "DONE",
	})

	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be at least 6 characters", verr.Fields["password"])
	assert.Equal(t, "must be one of PENDING IN_PROGRESS COMPLETED", verr.Fields["status"])
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{Password: "secret123"})

	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	_, hasJSONName := verr.Fields["email"]
	assert.True(t, hasJSONName)
	_, hasGoName := verr.Fields["Email"]
	assert.False(t, hasGoName)
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{
		Email:    "user@example.com",
		Password: "secret123",
		Status:   "PENDING",
	})

	assert.NoError(t, err)
}
