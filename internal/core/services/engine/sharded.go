package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/piwardrive/paccore/internal/core/domain"
	"github.com/piwardrive/paccore/internal/core/ports"
	"github.com/piwardrive/paccore/internal/core/services/flowid"
)

// ShardedEngine is the shared-nothing-sharded deployment mode (spec.md
// §5): N independent Engine instances, each a single writer over its
// own state, with the caller routing a packet by hashing its
// canonically ordered (src, dst, protocol) triple onto a shard — the same job
// cespare/xxhash/v2 does for wmap's device-registry sharding, reused
// here for flow-aware shard routing instead of MAC-only routing.
type ShardedEngine struct {
	shards []*Engine
}

// NewSharded builds n independent engines sharing the same Config and
// OuiDB. n must be ≥1.
func NewSharded(n int, config domain.Config, oui ports.OuiDB) (*ShardedEngine, error) {
	se := &ShardedEngine{shards: make([]*Engine, n)}
	for i := 0; i < n; i++ {
		e, err := New(config, oui)
		if err != nil {
			return nil, err
		}
		se.shards[i] = e
	}
	return se, nil
}

func (se *ShardedEngine) shardFor(key uint64) *Engine {
	return se.shards[key%uint64(len(se.shards))]
}

// RouteKey computes the shard-routing key for a (src, dst, protocol)
// triple, using the fast non-cryptographic hash (flowid.FastID) since
// routing does not need collision resistance.
func (se *ShardedEngine) RouteKey(src, dst domain.EndpointAddr, proto domain.ProtocolTag) uint64 {
	return flowid.FastID(src, dst, proto)
}

// AnalyzeOn routes the packet onto the shard identified by key and
// analyzes it there.
func (se *ShardedEngine) AnalyzeOn(ctx context.Context, key uint64, bytes []byte, ts uint64) domain.Report {
	return se.shardFor(key).Analyze(ctx, bytes, ts)
}

// Tick runs periodic maintenance on every shard concurrently, fanning
// in via errgroup the way a multi-producer deployment would (spec.md
// §5's sharded mode plus §5's tick(now) convenience method).
func (se *ShardedEngine) Tick(ctx context.Context, now time.Time) error {
	ctx, span := tracer.Start(ctx, "ShardedEngine.Tick")
	defer span.End()
	span.SetAttributes(attribute.Int("paccore.shard_count", len(se.shards)))

	g, _ := errgroup.WithContext(ctx)
	for _, shard := range se.shards {
		shard := shard
		g.Go(func() error {
			shard.Tick(now)
			return nil
		})
	}
	return g.Wait()
}

// MergedSummary merges per-shard RuntimeSummary into one aggregate
// view (spec.md §5: "consumers that need a global view must merge
// snapshots"). Topology nodes and connections are concatenated
// rather than deduplicated — a node routed consistently lives in
// exactly one shard as long as the caller's routing key is stable.
// Flow totals (flows, packets, bytes) are summed; the per-shard
// classification histograms, top-flow lists and topology stats are
// not merged.
func (se *ShardedEngine) MergedSummary(ctx context.Context) (domain.RuntimeSummary, error) {
	ctx, span := tracer.Start(ctx, "ShardedEngine.MergedSummary")
	defer span.End()
	span.SetAttributes(attribute.Int("paccore.shard_count", len(se.shards)))

	summaries := make([]domain.RuntimeSummary, len(se.shards))
	g, _ := errgroup.WithContext(ctx)
	for i, shard := range se.shards {
		i, shard := i, shard
		g.Go(func() error {
			summaries[i] = shard.Summary()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RuntimeSummary{}, err
	}

	merged := domain.RuntimeSummary{
		ProtocolsDetected: make(map[string]uint64),
	}
	for _, s := range summaries {
		merged.Packets += s.Packets
		merged.Bytes += s.Bytes
		if s.RuntimeS > merged.RuntimeS {
			merged.RuntimeS = s.RuntimeS
		}
		for proto, count := range s.ProtocolsDetected {
			merged.ProtocolsDetected[proto] += count
		}
		merged.Topology.Nodes = append(merged.Topology.Nodes, s.Topology.Nodes...)
		merged.Topology.Connections = append(merged.Topology.Connections, s.Topology.Connections...)
		merged.Flows.TotalFlows += s.Flows.TotalFlows
		merged.Flows.TotalPackets += s.Flows.TotalPackets
		merged.Flows.TotalBytes += s.Flows.TotalBytes
	}
	if merged.RuntimeS > 0 {
		merged.PacketsPerSecond = float64(merged.Packets) / merged.RuntimeS
		merged.BytesPerSecond = float64(merged.Bytes) / merged.RuntimeS
	}
	return merged, nil
}
