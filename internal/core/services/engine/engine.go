// Package engine implements the Analysis Engine facade (spec.md
// §4.6): the single public entry point that decodes a frame and fans
// it out to Topology, Classifier, and Detector, then assembles the
// combined per-packet Report.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/piwardrive/paccore/internal/core/domain"
	"github.com/piwardrive/paccore/internal/core/ports"
	"github.com/piwardrive/paccore/internal/core/services/anomaly"
	"github.com/piwardrive/paccore/internal/core/services/classifier"
	"github.com/piwardrive/paccore/internal/core/services/decoder"
	"github.com/piwardrive/paccore/internal/core/services/topology"
)

var tracer = otel.Tracer("paccore-engine")

// Engine composes the five core components behind the single
// analyze(bytes, ts) operation (spec.md §2).
type Engine struct {
	config domain.Config

	graph      *topology.Graph
	classifier *classifier.Classifier
	detector   *anomaly.Detector

	mu            sync.Mutex
	firstSeen     uint64
	haveFirstSeen bool
	totalPackets  uint64
	totalBytes    uint64
	protoCounts   map[domain.ProtocolTag]uint64
}

// New constructs an Engine, refusing an invalid Config (spec.md §7:
// "ConfigError — setup-time only").
func New(config domain.Config, oui ports.OuiDB) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config:      config,
		graph:       topology.NewGraph(oui),
		classifier:  classifier.New(),
		detector:    anomaly.New(config),
		protoCounts: make(map[domain.ProtocolTag]uint64),
	}, nil
}

// Analyze decodes bytes captured at ts (microseconds since epoch) and
// runs the full pipeline, never aborting on a malformed packet (spec.md
// §7 "every packet produces a Report").
func (e *Engine) Analyze(ctx context.Context, bytes []byte, ts uint64) domain.Report {
	_, span := tracer.Start(ctx, "Engine.Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("paccore.frame_bytes", len(bytes)))

	frame, ok := decoder.Decode(bytes, ts, e.config.AssumeRadiotap)
	if !ok {
		span.SetAttributes(attribute.Bool("paccore.parse_error", true))
		return domain.Report{ID: uuid.NewString(), ParseError: true}
	}
	e.resolveDirection(frame)

	e.mu.Lock()
	if !e.haveFirstSeen {
		e.firstSeen = ts
		e.haveFirstSeen = true
	}
	e.totalPackets++
	e.totalBytes += uint64(frame.TotalLen)
	e.protoCounts[frame.Protocol]++
	e.mu.Unlock()

	e.graph.Observe(frame.SourceAddr, frame.DestAddr, frame.Protocol, frame.TotalLen, ts)

	var sport, dport uint16
	if frame.HasTrans {
		sport, dport = frame.Transport.SPort, frame.Transport.DPort
	}
	classification := e.classifier.Classify(frame.SourceAddr, frame.DestAddr, frame.Protocol, sport, dport, frame.TotalLen, ts)

	anomalies := e.detector.Observe(frame)

	span.SetAttributes(
		attribute.String("paccore.protocol", frame.Protocol.String()),
		attribute.Int("paccore.anomaly_count", len(anomalies)),
	)

	return domain.Report{
		ID:             uuid.NewString(),
		Decoded:        summarizeDecoded(frame),
		Classification: classification,
		Anomalies:      anomalies,
	}
}

func (e *Engine) resolveDirection(frame *domain.DecodedFrame) {
	if len(e.config.LocalNets) == 0 {
		return
	}
	if frame.SourceAddr.Kind != domain.AddrIPv4 && frame.SourceAddr.Kind != domain.AddrComposite {
		return
	}
	srcLocal := e.config.InLocalNets(frame.SourceAddr.IP)
	dstLocal := e.config.InLocalNets(frame.DestAddr.IP)
	switch {
	case srcLocal && !dstLocal:
		frame.Direction = domain.DirOutbound
	case !srcLocal && dstLocal:
		frame.Direction = domain.DirInbound
	case srcLocal && dstLocal:
		frame.Direction = domain.DirLateral
	default:
		frame.Direction = domain.DirUnknown
	}
}

func summarizeDecoded(f *domain.DecodedFrame) domain.DecodedSummary {
	return domain.DecodedSummary{
		Timestamp:  f.Timestamp,
		TotalLen:   f.TotalLen,
		Protocol:   f.Protocol.String(),
		SourceAddr: f.SourceAddr.String(),
		DestAddr:   f.DestAddr.String(),
		AppHint:    f.AppHint.String(),
		Direction:  f.Direction.String(),
	}
}

// Tick performs the periodic maintenance the caller is responsible
// for driving: flow reaping and TCP-tracker eviction (spec.md §5).
// Topology pruning is deliberately excluded — it stays an opt-in
// PruneNodes call, matching topology's "unbounded by design" posture.
func (e *Engine) Tick(now time.Time) {
	nowMicros := uint64(now.UnixMicro())
	flowTTLMicros := uint64(e.config.FlowTTL.Microseconds())
	e.classifier.Reap(nowMicros, flowTTLMicros)
	e.detector.Tick(nowMicros)
}

// PruneNodes is the opt-in topology retention policy (spec.md §5).
func (e *Engine) PruneNodes(olderThan time.Time) int {
	return e.graph.PruneNodes(uint64(olderThan.UnixMicro()))
}

// Snapshot returns a consistent, read-only view of the topology graph.
func (e *Engine) Snapshot() domain.Snapshot {
	return e.graph.Snapshot(time.Now())
}

// TopFlows returns the k largest-by-bytes flows.
func (e *Engine) TopFlows(k int) []domain.FlowSummary {
	return e.classifier.TopFlows(k)
}

// Summary reports the aggregate runtime statistics (spec.md §4.6).
func (e *Engine) Summary() domain.RuntimeSummary {
	e.mu.Lock()
	packets := e.totalPackets
	totalBytes := e.totalBytes
	protoCounts := make(map[string]uint64, len(e.protoCounts))
	for p, c := range e.protoCounts {
		protoCounts[p.String()] = c
	}
	firstSeen := e.firstSeen
	haveFirst := e.haveFirstSeen
	e.mu.Unlock()

	runtimeS := 0.0
	if haveFirst {
		last := firstSeen
		// approximate "now" as the latest observed timestamp isn't
		// tracked separately; callers query Summary close to live
		// time, so wall-clock now is an acceptable proxy here.
		nowMicros := uint64(time.Now().UnixMicro())
		if nowMicros > firstSeen {
			last = nowMicros
		}
		runtimeS = float64(last-firstSeen) / 1e6
	}

	var pps, bps float64
	if runtimeS > 0 {
		pps = float64(packets) / runtimeS
		bps = float64(totalBytes) / runtimeS
	}

	return domain.RuntimeSummary{
		RuntimeS:          runtimeS,
		Packets:           packets,
		Bytes:             totalBytes,
		PacketsPerSecond:  pps,
		BytesPerSecond:    bps,
		ProtocolsDetected: protoCounts,
		Topology:          e.graph.Snapshot(time.Now()),
		Flows:             e.classifier.Statistics(),
	}
}
