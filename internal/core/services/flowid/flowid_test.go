package flowid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func TestIDSymmetric(t *testing.T) {
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	ab := ID(a, b, domain.ProtoTCP)
	ba := ID(b, a, domain.ProtoTCP)
	assert.Equal(t, ab, ba)
}

func TestIDDistinguishesProtocol(t *testing.T) {
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})
	assert.NotEqual(t, ID(a, b, domain.ProtoTCP), ID(a, b, domain.ProtoUDP))
}

func TestIDDistinguishesEndpoints(t *testing.T) {
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})
	c := domain.IPv4Addr([4]byte{10, 0, 0, 3})
	assert.NotEqual(t, ID(a, b, domain.ProtoTCP), ID(a, c, domain.ProtoTCP))
}

func TestFastIDSymmetric(t *testing.T) {
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})
	assert.Equal(t, FastID(a, b, domain.ProtoUDP), FastID(b, a, domain.ProtoUDP))
}

func TestEndpointsCanonicalOrder(t *testing.T) {
	a := domain.IPv4Addr([4]byte{10, 0, 0, 2})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	lo, hi := Endpoints(a, b)
	assert.True(t, lo.Less(hi))

	lo2, hi2 := Endpoints(b, a)
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
}
