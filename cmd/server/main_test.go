package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fxconv/internal/application/service"
)

func TestResolveBase(t *testing.T) {
	t.Run("Configured default", func(t *testing.T) {
		base, err := resolveBase("", "PKR")
		require.NoError(t, err)
		assert.Equal(t, "PKR", base)
	})

	t.Run("Flag wins and is normalized", func(t *testing.T) {
		base, err := resolveBase(" gbp ", "PKR")
		require.NoError(t, err)
		assert.Equal(t, "GBP", base)
	})

	t.Run("Invalid flag", func(t *testing.T) {
		_, err := resolveBase("pounds", "USD")
		assert.ErrorIs(t, err, service.ErrInvalidCurrency)
	})

	t.Run("Invalid default", func(t *testing.T) {
		_, err := resolveBase("", "")
		assert.ErrorIs(t, err, service.ErrInvalidCurrency)
	})
}
