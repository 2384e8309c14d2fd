package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/ports"
)

func TestValidatorMissingFields(t *testing.T) {
	v := NewValidator()

	err := v.Struct(ports.CreateEventRequest{Title: "Field Day", Location: "Meru", Description: "desc"})

	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Missing required fields: date, image", verr.Message)
	assert.Equal(t, map[string]string{
		"date":  "date is required",
		"image": "image is required",
	}, verr.Fields)
}

func TestValidatorNonRequiredFailure(t *testing.T) {
	v := NewValidator()

	err := v.Struct(ports.ContactRequest{Name: "Jane", Email: "not-an-email", Message: "hi"})

	var verr *entities.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Validation failed", verr.Message)
	assert.Equal(t, "Please provide a valid email address", verr.Fields["email"])
}

func TestValidatorPasses(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(ports.ContactRequest{Name: "Jane", Email: "jane@example.com", Message: "hi"}))
}
