package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func TestClassifyCollapsesBidirectionalFlow(t *testing.T) {
	c := New()
	a := domain.IPv4Addr([4]byte{192, 168, 0, 1})
	b := domain.IPv4Addr([4]byte{192, 168, 0, 2})

	c.Classify(a, b, domain.ProtoTCP, 1234, 80, 60, 1000)
	c.Classify(b, a, domain.ProtoTCP, 80, 1234, 60, 2000)

	stats := c.Statistics()
	require.Equal(t, 1, stats.TotalFlows)
	assert.Equal(t, uint64(2), stats.TopFlows[0].PacketCount)
}

func TestClassifyDNSHeuristic(t *testing.T) {
	c := New()
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	var last string
	for i := 0; i < 3; i++ {
		last = c.Classify(a, b, domain.ProtoUDP, 40000, 53, 120, uint64(1000*i))
	}
	assert.Equal(t, "DNS", last)
}

func TestClassifyReplacesOnlyOnStrictlyGreaterConfidence(t *testing.T) {
	c := New()
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	// DNS-shaped UDP packet, rule tier, confidence 0.9.
	cls := c.Classify(a, b, domain.ProtoUDP, 1111, 53, 120, 1)
	assert.Equal(t, "DNS", cls)

	// A single subsequent oversized packet can't out-rank 0.9 via the
	// FileTransfer heuristic (0.6) or media-streaming rule (0.7).
	cls = c.Classify(a, b, domain.ProtoUDP, 1111, 53, 11_000_000, 2)
	assert.Equal(t, "DNS", cls)
}

func TestReapRemovesStaleFlows(t *testing.T) {
	c := New()
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})
	c.Classify(a, b, domain.ProtoTCP, 1, 2, 60, 1000)

	removed := c.Reap(2_000_000_000, 300_000_000)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, c.Statistics().TotalFlows)
}

func TestTopFlowsOrderedByByteCountDescending(t *testing.T) {
	c := New()
	small := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	big := domain.IPv4Addr([4]byte{10, 0, 0, 3})
	peer := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	c.Classify(small, peer, domain.ProtoTCP, 1, 2, 100, 1)
	c.Classify(big, peer, domain.ProtoTCP, 3, 4, 5000, 1)

	top := c.TopFlows(10)
	require.Len(t, top, 2)
	assert.Equal(t, uint64(5000), top[0].ByteCount)
}
