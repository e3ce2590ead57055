package seeding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemoFixture(t *testing.T) {
	f, err := LoadDemoFixture()
	require.NoError(t, err)

	require.Len(t, f.Buildings, 1)
	b := f.Buildings[0]
	assert.Equal(t, "maple", b.Key)
	assert.Len(t, b.Units, 3)
	require.NotNil(t, b.Units[0].Occupant)
	assert.Equal(t, "OWNER", b.Units[0].Occupant.Type)
	assert.Equal(t, "101", b.Components[1].Unit)

	require.Len(t, f.Tasks, 2)
	assert.Equal(t, "QUARTERLY", f.Tasks[0].Recurrence)
	assert.Equal(t, "2025-01-15", f.Tasks[0].StartDate)
	assert.Equal(t, "plumber-login", f.Providers[0].Login)
}

func TestParseFixture_Invalid(t *testing.T) {
	_, err := ParseFixture([]byte("buildings: [unterminated"))
	assert.Error(t, err)
}
