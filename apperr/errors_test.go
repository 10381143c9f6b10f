package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("Learner not found"), KindNotFound},
		{"invalid state", InvalidState("Payment already processed"), KindInvalidState},
		{"validation", Validation("phone or email is required"), KindValidation},
		{"unauthorized", Unauthorized("Invalid credentials"), KindUnauthorized},
		{"verification", VerificationFailed("Payment not settled", nil), KindVerificationFailed},
		{"transient", Transient(errors.New("connection refused"), "Failed to load learner"), KindTransient},
		{"foreign error", errors.New("boom"), KindTransient},
		{"wrapped", fmt.Errorf("activate: %w", InvalidState("x")), KindInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestTransientKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient(cause, "Failed to load learner")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load learner", MessageOf(err))
	assert.Nil(t, Transient(nil, "nothing"))
}

func TestMessageOfForeignError(t *testing.T) {
	assert.Equal(t, "Server error", MessageOf(errors.New("driver: bad connection")))
}
