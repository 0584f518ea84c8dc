package nnsearch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		is   error
	}{
		{"Empty", ErrEmptyStructure, KindEmptyStructure, ErrEmptyStructure},
		{"Config", index.NewConfigError(index.AlgorithmKDTree, "trees", "must be positive"), KindInvalidConfiguration, ErrInvalidConfiguration},
		{"Dimension", &distance.DimensionMismatchError{Expected: 2, Actual: 3}, KindInvalidArgument, ErrInvalidArgument},
		{"K", ErrInvalidK, KindInvalidArgument, ErrInvalidArgument},
		{"Radius", ErrNegativeRadius, KindInvalidArgument, ErrInvalidArgument},
		{"Backend", errors.New("boom"), KindBackend, ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError("op", tt.err)
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.ErrorIs(t, err, tt.is)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTranslateErrorKeepsKind(t *testing.T) {
	inner := newError("inner", KindEmptyStructure, ErrEmptyStructure)
	err := translateError("outer", fmt.Errorf("wrapped: %w", inner))

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "inner", e.Op)
	assert.Nil(t, translateError("op", nil))
}

func TestErrorTyped(t *testing.T) {
	err := translateError("add", &distance.DimensionMismatchError{Expected: 2, Actual: 3})
	var dm *distance.DimensionMismatchError
	assert.True(t, errors.As(err, &dm))
	assert.Equal(t, 3, dm.Actual)
	assert.Equal(t, "nnsearch: add: dimension mismatch: expected 2, got 3", err.Error())

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "backend failure", KindBackend.String())
}
