package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	rates := map[string]float64{"USD": 1, "EUR": 0.85, "GBP": 0.79, "JPY": 151.2}

	t.Run("Direct conversion", func(t *testing.T) {
		converted, rate := Convert(100, "USD", "EUR", map[string]float64{"USD": 1, "EUR": 0.85})
		assert.InDelta(t, 85.0, converted, 1e-9)
		assert.Equal(t, 0.85, rate)
	})

	t.Run("Identity", func(t *testing.T) {
		for _, amount := range []float64{0, 1, -42.5, 1e9} {
			for _, code := range []string{"USD", "EUR", "XYZ"} {
				converted, rate := Convert(amount, code, code, rates)
				assert.Equal(t, amount, converted)
				assert.Equal(t, 1.0, rate)
			}
		}
	})

	t.Run("Round trip", func(t *testing.T) {
		codes := []string{"USD", "EUR", "GBP", "JPY"}
		for _, a := range codes {
			for _, b := range codes {
				there, _ := Convert(123.45, a, b, rates)
				back, _ := Convert(there, b, a, rates)
				assert.InDelta(t, 123.45, back, 1e-9, "%s -> %s -> %s", a, b, a)
			}
		}
	})

	t.Run("Missing target rate", func(t *testing.T) {
		converted, rate := Convert(100, "USD", "GBP", map[string]float64{"USD": 1, "EUR": 0.85})
		assert.True(t, math.IsNaN(converted))
		assert.True(t, math.IsNaN(rate))
	})

	t.Run("Non-positive source rate", func(t *testing.T) {
		converted, _ := Convert(100, "USD", "EUR", map[string]float64{"USD": 0, "EUR": 0.85})
		assert.True(t, math.IsNaN(converted))
	})

	t.Run("Inputs are not modified", func(t *testing.T) {
		input := map[string]float64{"USD": 1, "EUR": 0.85}
		Convert(10, "USD", "EUR", input)
		assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.85}, input)
	})
}

func TestConversionResultValid(t *testing.T) {
	assert.True(t, ConversionResult{ConvertedAmount: 85, EffectiveRate: 0.85}.Valid())
	assert.False(t, ConversionResult{ConvertedAmount: math.NaN(), EffectiveRate: math.NaN()}.Valid())
}
