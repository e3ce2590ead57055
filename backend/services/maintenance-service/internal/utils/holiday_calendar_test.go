package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservedHoliday(t *testing.T) {
	t.Run("Should name a holiday on its own date", func(t *testing.T) {
		name, ok := ObservedHoliday(time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC))

		assert.True(t, ok)
		assert.NotEmpty(t, name)
	})

	t.Run("Should move a Saturday holiday to Friday", func(t *testing.T) {
		// July 4th 2026 is a Saturday.
		_, onSaturday := ObservedHoliday(time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC))
		_, onFriday := ObservedHoliday(time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC))

		assert.False(t, onSaturday)
		assert.True(t, onFriday)
	})

	t.Run("Should report ordinary days as open", func(t *testing.T) {
		_, ok := ObservedHoliday(time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC))

		assert.False(t, ok)
	})
}
