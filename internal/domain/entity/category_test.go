package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
)

func TestNewCategory(t *testing.T) {
	t.Run("Valid category", func(t *testing.T) {
		b := decimal.NewFromInt(4000)
		c, err := NewCategory("  Pets ", "pets", "#000000", &b)
		require.NoError(t, err)
		assert.Equal(t, "Pets", c.Name)
		assert.True(t, c.IsActive)
	})

	t.Run("Empty name", func(t *testing.T) {
		_, err := NewCategory(" ", "", "", nil)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("Negative budget", func(t *testing.T) {
		b := decimal.NewFromInt(-1)
		_, err := NewCategory("Pets", "", "", &b)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestCategoryMatchesName(t *testing.T) {
	c := &Category{Name: "Food & Dining"}
	assert.True(t, c.MatchesName("food & dining"))
	assert.True(t, c.MatchesName(" FOOD & DINING "))
	assert.False(t, c.MatchesName("Food"))
}

func TestDefaultCategories(t *testing.T) {
	categories := DefaultCategories()
	names := CategoryNames(categories)

	assert.Len(t, categories, 10)
	assert.Equal(t, "Food & Dining", names[0])
	assert.Equal(t, DefaultCategory, names[len(names)-1])
	for _, c := range categories {
		assert.True(t, c.IsActive, c.Name)
	}
}
