package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealWindowFromString(t *testing.T) {
	t.Run("parses valid windows", func(t *testing.T) {
		for _, name := range []string{"BREAKFAST", "LUNCH", "DINNER"} {
			w, err := kernel.MealWindowFromString(name)
			require.NoError(t, err)
			assert.Equal(t, name, w.String())
		}
	})

	t.Run("rejects unknown window", func(t *testing.T) {
		_, err := kernel.MealWindowFromString("BRUNCH")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects empty window", func(t *testing.T) {
		_, err := kernel.MealWindowFromString("")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects lowercase window", func(t *testing.T) {
		_, err := kernel.MealWindowFromString("lunch")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestAllMealWindows(t *testing.T) {
	windows := kernel.AllMealWindows()

	assert.Len(t, windows, 3)
	for _, w := range windows {
		assert.NoError(t, w.Validate())
	}
}
