package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func baseConfig() domain.Config {
	return domain.DefaultConfig()
}

func tcpFrame(src, dst domain.EndpointAddr, flags domain.TCPFlags, ts uint64) *domain.DecodedFrame {
	return &domain.DecodedFrame{
		Timestamp:  ts,
		TotalLen:   60,
		HasNet:     true,
		HasTrans:   true,
		Transport:  domain.Transport{Kind: domain.TransportTCP, SPort: 1234, DPort: 80, Flags: flags},
		SourceAddr: src,
		DestAddr:   dst,
		Protocol:   domain.ProtoTCP,
	}
}

func TestMalformedPacketAnomalyEmitted(t *testing.T) {
	d := New(baseConfig())
	f := &domain.DecodedFrame{
		Timestamp: 1,
		Malformed: []domain.MalformedReason{domain.MalformedBadIHL},
	}
	reports := d.Observe(f)
	require.NotEmpty(t, reports)
	assert.Equal(t, domain.AnomalyMalformedPacket, reports[0].Kind)
	assert.Equal(t, domain.SeverityMedium, reports[0].Severity)
}

func TestTCPHandshakeReachesEstablishedWithoutViolation(t *testing.T) {
	d := New(baseConfig())
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	synReports := d.Observe(tcpFrame(a, b, domain.TCPFlags{SYN: true}, 1000))
	synAckReports := d.Observe(tcpFrame(b, a, domain.TCPFlags{SYN: true, ACK: true}, 2000))
	ackReports := d.Observe(tcpFrame(a, b, domain.TCPFlags{ACK: true}, 3000))

	for _, rs := range [][]domain.AnomalyReport{synReports, synAckReports, ackReports} {
		for _, r := range rs {
			assert.NotEqual(t, domain.AnomalyProtocolViolation, r.Kind)
		}
	}
}

func TestTCPUnexpectedTransitionFlagged(t *testing.T) {
	d := New(baseConfig())
	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	// ACK with no prior SYN is an unexpected transition from Closed.
	reports := d.Observe(tcpFrame(a, b, domain.TCPFlags{ACK: true}, 1000))
	found := false
	for _, r := range reports {
		if r.Kind == domain.AnomalyProtocolViolation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRateLimitExceededAnomaly(t *testing.T) {
	cfg := baseConfig()
	cfg.PacketRateThresholdPPS = 10
	cfg.DetectionWindow = 100 * time.Millisecond
	d := New(cfg)

	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	var last []domain.AnomalyReport
	for i := 0; i < 150; i++ {
		f := &domain.DecodedFrame{
			Timestamp:  uint64(i * 1000), // 1ms apart, in microseconds
			TotalLen:   60,
			Protocol:   domain.ProtoUDP,
			SourceAddr: a,
			DestAddr:   b,
		}
		last = d.Observe(f)
	}
	found := false
	for _, r := range last {
		if r.Kind == domain.AnomalyRateLimitExceeded {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUnexpectedProtocolRatioAnomaly(t *testing.T) {
	cfg := baseConfig()
	cfg.UnknownProtocolRatioThreshold = 0.05
	d := New(cfg)

	a := domain.IPv4Addr([4]byte{10, 0, 0, 1})
	b := domain.IPv4Addr([4]byte{10, 0, 0, 2})

	var last []domain.AnomalyReport
	for i := 0; i < 20; i++ {
		proto := domain.ProtoUDP
		if i%2 == 0 {
			proto = domain.ProtoUnknown
		}
		f := &domain.DecodedFrame{
			Timestamp:  uint64(i * 1000),
			TotalLen:   60,
			Protocol:   proto,
			SourceAddr: a,
			DestAddr:   b,
		}
		last = d.Observe(f)
	}
	found := false
	for _, r := range last {
		if r.Kind == domain.AnomalyUnexpectedProtocol {
			found = true
		}
	}
	assert.True(t, found)
}
