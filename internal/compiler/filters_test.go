package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	t.Run("formats numbers with symbol and grouping", func(t *testing.T) {
		assert.Equal(t, "$5.00", FormatCurrency(5.0))
		assert.Equal(t, "$1,234.50", FormatCurrency(1234.5))
		assert.Equal(t, "$-12.50", FormatCurrency(-12.5))
	})

	t.Run("coerces numeric strings", func(t *testing.T) {
		assert.Equal(t, "$99.90", FormatCurrency("99.9"))
	})

	t.Run("returns literal string form on coercion failure", func(t *testing.T) {
		assert.Equal(t, "n/a", FormatCurrency("n/a"))
		assert.Equal(t, "true", FormatCurrency(true))
	})
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatNumber(1234.5, 2))
	assert.Equal(t, "1,235", FormatNumber(1234.75, 0))
	assert.Equal(t, "0.2500", FormatNumber(0.25, 4))
	assert.Equal(t, "oops", FormatNumber("oops", 2))
}

func TestFormatDate(t *testing.T) {
	t.Run("parses ISO strings with trailing Z", func(t *testing.T) {
		assert.Equal(t, "March 15, 2024", FormatDate("2024-03-15T10:30:00Z", defaultDateLayout))
	})

	t.Run("parses date-only strings", func(t *testing.T) {
		assert.Equal(t, "January 2, 2023", FormatDate("2023-01-02", defaultDateLayout))
	})

	t.Run("returns literal string form on parse failure", func(t *testing.T) {
		assert.Equal(t, "yesterday", FormatDate("yesterday", defaultDateLayout))
		assert.Equal(t, "42", FormatDate(42.0, defaultDateLayout))
	})
}

func TestApplyFilters(t *testing.T) {
	t.Run("applies filters left to right", func(t *testing.T) {
		got := applyFilters("hello", []string{"uppercase", "lowercase"})
		assert.Equal(t, "hello", got)

		got = applyFilters("hello", []string{"lowercase", "uppercase"})
		assert.Equal(t, "HELLO", got)
	})

	t.Run("unknown filter names pass the value through", func(t *testing.T) {
		got := applyFilters(5.0, []string{"sparkle", "currency"})
		assert.Equal(t, "$5.00", got)
	})
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "5", stringify(5.0))
	assert.Equal(t, "5.25", stringify(5.25))
	assert.Equal(t, "text", stringify("text"))
	assert.Equal(t, "true", stringify(true))
}
