package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePickValue(t *testing.T) {
	t.Run("yes_no accepts tokens case insensitively", func(t *testing.T) {
		for raw, want := range map[string]string{
			"yes":  "yes",
			"YES":  "yes",
			" No ": "no",
			"No":   "no",
		} {
			got, err := NormalizePickValue(WagerTypeYesNo, raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got)
		}
	})

	t.Run("yes_no rejects other values", func(t *testing.T) {
		_, err := NormalizePickValue(WagerTypeYesNo, "maybe")
		assert.ErrorIs(t, err, ErrInvalidPickValue)
	})

	t.Run("over_under accepts sides only", func(t *testing.T) {
		got, err := NormalizePickValue(WagerTypeOverUnder, " OVER ")
		require.NoError(t, err)
		assert.Equal(t, PickOver, got)

		_, err = NormalizePickValue(WagerTypeOverUnder, "yes")
		assert.ErrorIs(t, err, ErrInvalidPickValue)
	})

	t.Run("closest_guess canonicalizes numbers", func(t *testing.T) {
		got, err := NormalizePickValue(WagerTypeClosestGuess, "42.50")
		require.NoError(t, err)
		assert.Equal(t, "42.5", got)

		got, err = NormalizePickValue(WagerTypeClosestGuess, "100")
		require.NoError(t, err)
		assert.Equal(t, "100", got)

		_, err = NormalizePickValue(WagerTypeClosestGuess, "not a number")
		assert.ErrorIs(t, err, ErrInvalidPickValue)
	})
}

func TestParseOutcomeValue(t *testing.T) {
	t.Run("yes_no outcome is the token", func(t *testing.T) {
		canonical, _, err := ParseOutcomeValue(WagerTypeYesNo, "Yes")
		require.NoError(t, err)
		assert.Equal(t, "yes", canonical)
	})

	t.Run("numeric outcomes parse and canonicalize", func(t *testing.T) {
		canonical, numeric, err := ParseOutcomeValue(WagerTypeOverUnder, "50.50")
		require.NoError(t, err)
		assert.Equal(t, "50.5", canonical)
		assert.Equal(t, 50.5, numeric)
	})

	t.Run("invalid outcomes are rejected", func(t *testing.T) {
		_, _, err := ParseOutcomeValue(WagerTypeOverUnder, "high")
		assert.ErrorIs(t, err, ErrInvalidOutcome)

		_, _, err = ParseOutcomeValue(WagerTypeYesNo, "42")
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})
}
