package oui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryDBLookup(t *testing.T) {
	db := NewMemoryDB(map[string]string{"AA:BB:CC": "Acme Router Co"})

	vendor, ok := db.Lookup("AA:BB:CC")
	assert.True(t, ok)
	assert.Equal(t, "Acme Router Co", vendor)

	_, ok = db.Lookup("00:00:00")
	assert.False(t, ok)
}

func TestMemoryDBNilMap(t *testing.T) {
	db := NewMemoryDB(nil)
	_, ok := db.Lookup("AA:BB:CC")
	assert.False(t, ok)
}
