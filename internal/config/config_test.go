package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func TestParseLocalNets(t *testing.T) {
	nets, err := parseLocalNets("192.168.0.0/24, 10.0.0.0/8")
	require.NoError(t, err)
	require.Len(t, nets, 2)
}

func TestParseLocalNetsEmpty(t *testing.T) {
	nets, err := parseLocalNets("")
	require.NoError(t, err)
	assert.Nil(t, nets)
}

func TestParseLocalNetsInvalid(t *testing.T) {
	_, err := parseLocalNets("not-a-cidr")
	assert.Error(t, err)
}

func TestParseRadiotapMode(t *testing.T) {
	assert.Equal(t, domain.RadiotapAlways, parseRadiotapMode("Always"))
	assert.Equal(t, domain.RadiotapNever, parseRadiotapMode("NEVER"))
	assert.Equal(t, domain.RadiotapAuto, parseRadiotapMode("auto"))
	assert.Equal(t, domain.RadiotapAuto, parseRadiotapMode("garbage"))
}
