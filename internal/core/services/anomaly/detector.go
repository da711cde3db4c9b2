// Package anomaly implements the Anomaly Detector (spec.md §4.5):
// malformation, TCP-protocol-violation, rate, and protocol-mix checks
// over a rolling window of recently observed packets.
package anomaly

import (
	"sync"

	"github.com/google/uuid"

	"github.com/piwardrive/paccore/internal/core/domain"
)

// Detector holds the rolling buffer and TCP tracker. Safe for
// concurrent use; Observe is the single writer entry point, matching
// spec.md §5's single-writer-many-readers model.
type Detector struct {
	mu     sync.Mutex
	buf    *ringBuffer
	tcp    *TCPTracker
	config domain.Config
}

// New builds a Detector from a validated Config.
func New(config domain.Config) *Detector {
	return &Detector{
		buf:    newRingBuffer(config.RollingBufferCapacity),
		tcp:    NewTCPTracker(),
		config: config,
	}
}

// Observe folds one decoded frame into the rolling window and TCP
// tracker, returning any anomalies it produced (spec.md §4.5 step 1-5).
func (d *Detector) Observe(frame *domain.DecodedFrame) []domain.AnomalyReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []domain.AnomalyReport

	d.buf.push(packetRecord{
		timestamp: frame.Timestamp,
		protocol:  frame.Protocol,
		length:    frame.TotalLen,
		src:       frame.SourceAddr.String(),
		dst:       frame.DestAddr.String(),
	})

	for _, reason := range frame.Malformed {
		out = append(out, d.newReport(
			domain.AnomalyMalformedPacket,
			frame.Protocol,
			frame.SourceAddr.String(),
			frame.DestAddr.String(),
			"malformed field: "+string(reason),
			domain.SeverityMedium,
			0.9,
			frame.Timestamp,
			map[string]any{"reason": string(reason)},
		))
	}

	if frame.HasTrans && frame.Transport.Kind == domain.TransportTCP {
		violation := d.tcp.Observe(
			frame.SourceAddr.String(), frame.DestAddr.String(),
			frame.Transport.SPort, frame.Transport.DPort,
			frame.Transport.Flags, frame.Transport.Seq, frame.Transport.Ack,
			frame.Timestamp,
		)
		if violation {
			out = append(out, d.newReport(
				domain.AnomalyProtocolViolation,
				frame.Protocol,
				frame.SourceAddr.String(),
				frame.DestAddr.String(),
				"unexpected TCP state transition",
				domain.SeverityMedium,
				0.7,
				frame.Timestamp,
				nil,
			))
		}
	}

	windowMicros := uint64(d.config.DetectionWindow.Microseconds())
	var since uint64
	if frame.Timestamp > windowMicros {
		since = frame.Timestamp - windowMicros
	}
	total, unknown := d.buf.countSince(since)

	if total >= 100 {
		windowS := d.config.DetectionWindow.Seconds()
		pps := float64(total) / windowS
		if pps > d.config.PacketRateThresholdPPS {
			out = append(out, d.newReport(
				domain.AnomalyRateLimitExceeded,
				frame.Protocol,
				frame.SourceAddr.String(),
				frame.DestAddr.String(),
				"packet rate exceeds configured threshold",
				domain.SeverityHigh,
				0.8,
				frame.Timestamp,
				map[string]any{"pps": pps},
			))
		}
	}

	if total > 0 {
		ratio := float64(unknown) / float64(total)
		if ratio > d.config.UnknownProtocolRatioThreshold {
			out = append(out, d.newReport(
				domain.AnomalyUnexpectedProtocol,
				frame.Protocol,
				frame.SourceAddr.String(),
				frame.DestAddr.String(),
				"unknown-protocol ratio exceeds configured threshold",
				domain.SeverityMedium,
				0.6,
				frame.Timestamp,
				map[string]any{"ratio": ratio},
			))
		}
	}

	return out
}

// Tick performs the TCP tracker's periodic eviction (spec.md §5's
// convenience tick(now) method, TCP-tracker portion).
func (d *Detector) Tick(nowMicros uint64) int {
	flowTTLMicros := uint64(d.config.FlowTTL.Microseconds())
	return d.tcp.Evict(nowMicros, flowTTLMicros, d.config.TCPTimeWaitFactor)
}

func (d *Detector) newReport(kind domain.AnomalyKind, proto domain.ProtocolTag, src, dst, desc string, sev domain.Severity, conf float32, ts uint64, extra map[string]any) domain.AnomalyReport {
	return domain.AnomalyReport{
		ID:          uuid.NewString(),
		Kind:        kind,
		Protocol:    proto,
		Src:         src,
		Dst:         dst,
		Description: desc,
		Severity:    sev,
		Confidence:  conf,
		Timestamp:   ts,
		Extra:       extra,
	}
}
