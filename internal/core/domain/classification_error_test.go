package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationError_Is(t *testing.T) {
	err := &ClassificationError{Kind: KindTimeout, Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, ErrClassification)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "risk classification failed (timeout): context deadline exceeded", err.Error())
}

func TestClassificationError_As(t *testing.T) {
	inner := &ClassificationError{Kind: KindParseFailure, Raw: "{cost: oops"}
	wrapped := fmt.Errorf("classifying apollo: %w", inner)

	var ce *ClassificationError
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, KindParseFailure, ce.Kind)
	assert.Equal(t, "{cost: oops", ce.Raw)
	assert.ErrorIs(t, wrapped, ErrClassification)
	assert.Equal(t, "risk classification failed (parse_failure)", inner.Error())
}

func TestTone_IsValid(t *testing.T) {
	for _, tone := range AllTones() {
		assert.True(t, tone.IsValid())
	}
	assert.False(t, Tone("Casual").IsValid())
}
