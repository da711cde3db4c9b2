package engine

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func ethernetIPv4TCP(t *testing.T, sport, dport uint16) []byte {
	t.Helper()
	b := make([]byte, 14+20+20)
	copy(b[0:6], []byte{0x00, 0x66, 0x77, 0x88, 0x99, 0x00})
	copy(b[6:12], []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	binary.BigEndian.PutUint16(b[12:14], 0x0800)

	ip := b[14:34]
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], 40) // total length: 20 header + 20 TCP
	ip[9] = 6
	copy(ip[12:16], []byte{192, 168, 0, 1})
	copy(ip[16:20], []byte{192, 168, 0, 2})

	tcp := b[34:54]
	binary.BigEndian.PutUint16(tcp[0:2], sport)
	binary.BigEndian.PutUint16(tcp[2:4], dport)
	tcp[12] = 5 << 4
	tcp[13] = 0x02 // SYN

	return b
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(domain.DefaultConfig(), nil)
	require.NoError(t, err)
	return e
}

// E1 — minimal Ethernet/IPv4/TCP packet.
func TestE1MinimalEthernetIPv4TCP(t *testing.T) {
	e := newTestEngine(t)
	b := ethernetIPv4TCP(t, 0x50, 0x50)

	report := e.Analyze(context.Background(), b, 1_000_000)
	require.False(t, report.ParseError)
	assert.Equal(t, "tcp", report.Decoded.Protocol)
	assert.Equal(t, "192.168.0.1", report.Decoded.SourceAddr)
	assert.Equal(t, "192.168.0.2", report.Decoded.DestAddr)
	assert.Empty(t, report.Anomalies)

	snap := e.Snapshot()
	assert.Len(t, snap.Nodes, 2)

	stats := e.classifier.Statistics()
	assert.Equal(t, 1, stats.TotalFlows)
}

// E3 — truncated frame.
func TestE3TruncatedFrameIsParseError(t *testing.T) {
	e := newTestEngine(t)
	report := e.Analyze(context.Background(), make([]byte, 10), 1)
	assert.True(t, report.ParseError)
}

// E4 — bidirectional flow collapse.
func TestE4BidirectionalFlowCollapse(t *testing.T) {
	e := newTestEngine(t)
	forward := ethernetIPv4TCP(t, 1234, 80)
	e.Analyze(context.Background(), forward, 1000)

	backward := make([]byte, len(forward))
	copy(backward, forward)
	copy(backward[14:34][12:16], []byte{192, 168, 0, 2})
	copy(backward[14:34][16:20], []byte{192, 168, 0, 1})
	binary.BigEndian.PutUint16(backward[34:54][0:2], 80)
	binary.BigEndian.PutUint16(backward[34:54][2:4], 1234)
	e.Analyze(context.Background(), backward, 2000)

	stats := e.classifier.Statistics()
	require.Equal(t, 1, stats.TotalFlows)
	assert.Equal(t, uint64(2), stats.TopFlows[0].PacketCount)
}

func TestPruneNodesIsOptIn(t *testing.T) {
	e := newTestEngine(t)
	b := ethernetIPv4TCP(t, 1, 2)
	e.Analyze(context.Background(), b, 1000)
	assert.Len(t, e.Snapshot().Nodes, 2)

	removed := e.PruneNodes(time.Now().Add(time.Hour))
	assert.Equal(t, 2, removed)
	assert.Empty(t, e.Snapshot().Nodes)
}

func TestShardedEngineTickFansOut(t *testing.T) {
	se, err := NewSharded(4, domain.DefaultConfig(), nil)
	require.NoError(t, err)
	err = se.Tick(context.Background(), time.Now())
	require.NoError(t, err)
}

func TestShardedEngineMergedSummary(t *testing.T) {
	se, err := NewSharded(2, domain.DefaultConfig(), nil)
	require.NoError(t, err)

	b := ethernetIPv4TCP(t, 1, 2)
	key := se.RouteKey(domain.IPv4Addr([4]byte{192, 168, 0, 1}), domain.IPv4Addr([4]byte{192, 168, 0, 2}), domain.ProtoTCP)
	se.AnalyzeOn(context.Background(), key, b, 1000)

	merged, err := se.MergedSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), merged.Packets)
}
