package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Unwrap(t *testing.T) {
	err := fmt.Errorf("create plan: %w", WrapPlanNotFound("abc"))

	assert.True(t, errors.Is(err, ErrPlanNotFound))
	assert.Equal(t, ErrCodePlanNotFound, Code(err))
	assert.Contains(t, err.Error(), "PLAN_NOT_FOUND")
}

func TestBusinessError_NoCause(t *testing.T) {
	err := NewBusinessError("X", "message", nil)
	assert.Equal(t, "X: message", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrapRatesUnavailable(t *testing.T) {
	cause := errors.New("timeout")
	err := WrapRatesUnavailable(cause)

	assert.True(t, errors.Is(err, ErrRatesUnavailable))
	assert.True(t, errors.Is(err, cause))
}

func TestCode_PlainError(t *testing.T) {
	assert.Equal(t, "", Code(errors.New("boom")))
}
