package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	vip, ok := c.TicketType(" VIP ")
	require.True(t, ok)
	assert.Equal(t, 599, vip.Price)

	_, ok = c.TicketType("backstage")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Sanskruthi 2K25
date: "2025-05-17"
venue: AIT Bengaluru
currency: INR
max_quantity: 3
ticket_types:
  - code: general
    name: General
    price: 199
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.MaxQuantity)
	require.Len(t, c.TicketTypes, 1)
	assert.Equal(t, 199, c.TicketTypes[0].Price)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Sanskruthi 2K25", c.Name)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("name: x\nmax_quantity: 1\nticket_types: []\n"))
	assert.ErrorContains(t, err, "ticket type")

	_, err = Parse([]byte("name: x\nmax_quantity: 1\nsurprise: true\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Parse([]byte(`
name: x
max_quantity: 2
ticket_types:
  - {code: a, name: A, price: 1}
  - {code: a, name: B, price: 2}
`))
	assert.ErrorContains(t, err, "duplicate")
}
