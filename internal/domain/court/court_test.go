package court

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredPlayersFallbacks(t *testing.T) {
	// Explicit value wins.
	c := NewCourt("Court A", "badminton", 4)
	assert.Equal(t, 4, c.RequiredPlayers())

	// Category default.
	c = NewCourt("Court A", "badminton", 0)
	assert.Equal(t, 2, c.RequiredPlayers())

	c = NewCourt("Main Field", "football", 0)
	assert.Equal(t, 22, c.RequiredPlayers())

	c = NewCourt("Gym", "basketball", 0)
	assert.Equal(t, 10, c.RequiredPlayers())

	// Unknown category falls back to 2.
	c = NewCourt("Mystery", "curling", 0)
	assert.Equal(t, 2, c.RequiredPlayers())
}
