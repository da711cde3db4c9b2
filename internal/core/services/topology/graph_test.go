package topology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

type fakeOui struct {
	vendor string
	known  bool
}

func (f fakeOui) Lookup(prefix string) (string, bool) { return f.vendor, f.known }

func TestObserveCreatesNodesAndConnection(t *testing.T) {
	g := NewGraph(nil)
	a := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01})
	b := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02})

	g.Observe(a, b, domain.ProtoEthernet, 100, 1000)
	g.Observe(a, b, domain.ProtoEthernet, 200, 2000)

	snap := g.Snapshot(time.Now())
	require.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Connections, 1)
	assert.Equal(t, uint64(2), snap.Connections[0].PacketCount)
	assert.Equal(t, uint64(300), snap.Connections[0].ByteCount)
}

func TestObserveExcludesBroadcastAndZeroMAC(t *testing.T) {
	g := NewGraph(nil)
	a := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01})
	broadcast := domain.MAC48Addr([6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	zero := domain.MAC48Addr([6]byte{0, 0, 0, 0, 0, 0})

	g.Observe(a, broadcast, domain.ProtoEthernet, 10, 1)
	g.Observe(a, zero, domain.ProtoEthernet, 10, 1)

	snap := g.Snapshot(time.Now())
	assert.Len(t, snap.Nodes, 1)
	assert.Empty(t, snap.Connections)
}

func TestVendorResolvedOnce(t *testing.T) {
	g := NewGraph(fakeOui{vendor: "Acme Router Gateway Co", known: true})
	a := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01})
	b := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02})

	g.Observe(a, b, domain.ProtoEthernet, 10, 1)
	snap := g.Snapshot(time.Now())
	require.Len(t, snap.Nodes, 2)
	for _, n := range snap.Nodes {
		assert.Equal(t, "Acme Router Gateway Co", n.Vendor)
		assert.Equal(t, domain.ClassRouter, n.Class)
	}
}

func TestPruneNodesRemovesStaleNodesAndConnections(t *testing.T) {
	g := NewGraph(nil)
	a := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01})
	b := domain.MAC48Addr([6]byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02})
	g.Observe(a, b, domain.ProtoEthernet, 10, 1000)

	removed := g.PruneNodes(2000)
	assert.Equal(t, 2, removed)

	snap := g.Snapshot(time.Now())
	assert.Empty(t, snap.Nodes)
	assert.Empty(t, snap.Connections)
}
