package errors_test

import (
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "[op] %s", "ignored"))

	err := apperrors.Wrapf(apperrors.ErrNotFound, "[op %s] lookup", "g1")
	require.EqualError(t, err, "[op g1] lookup: not found")
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}
