// Package classifier implements the Flow Classifier (spec.md §4.4):
// collapses packets into bidirectional flows keyed by FlowId, applies
// a precedence-ordered rule table, and ages out stale flows.
//
// Sharded the same way topology.Graph and wmap's DeviceRegistry shard
// their state — one RWMutex per shard, shard chosen from the FlowId's
// own bytes rather than rehashing a string.
package classifier

import (
	"sort"
	"sync"

	"github.com/piwardrive/paccore/internal/core/domain"
	"github.com/piwardrive/paccore/internal/core/services/flowid"
)

const numShards = 16

type flowShard struct {
	mu    sync.RWMutex
	flows map[domain.FlowId]*domain.Flow
}

// Classifier is the live flow table. Safe for concurrent use.
type Classifier struct {
	shards []*flowShard
}

// New builds an empty Classifier.
func New() *Classifier {
	c := &Classifier{shards: make([]*flowShard, numShards)}
	for i := range c.shards {
		c.shards[i] = &flowShard{flows: make(map[domain.FlowId]*domain.Flow)}
	}
	return c
}

func (c *Classifier) shardFor(id domain.FlowId) *flowShard {
	return c.shards[int(id[0])%len(c.shards)]
}

// Classify folds one decoded frame into its flow and returns the
// flow's current classification, following the precedence rules of
// spec.md §4.4 step 4.
func (c *Classifier) Classify(src, dst domain.EndpointAddr, proto domain.ProtocolTag, sport, dport uint16, byteLen uint32, tsMicros uint64) string {
	id := flowid.ID(src, dst, proto)
	lo, hi := flowid.Endpoints(src, dst)
	shard := c.shardFor(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	f, ok := shard.flows[id]
	if !ok {
		f = &domain.Flow{
			ID:             id,
			EndpointLo:     lo,
			EndpointHi:     hi,
			Protocol:       proto,
			FirstSeen:      tsMicros,
			Classification: "unknown",
			ClassifiedBy:   domain.TierNone,
		}
		shard.flows[id] = f
	}

	f.PacketCount++
	f.ByteCount += uint64(byteLen)
	f.LastSeen = tsMicros

	applyRules(f, proto, sport, dport, byteLen)

	return f.Classification
}

// Reap removes every flow whose last_seen is older than
// now-flowTTLMicros (spec.md §4.4 "reap").
func (c *Classifier) Reap(nowMicros uint64, flowTTLMicros uint64) int {
	removed := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		for id, f := range shard.flows {
			if nowMicros-f.LastSeen > flowTTLMicros {
				delete(shard.flows, id)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// TopFlows returns the k flows with the largest byte_count, descending
// (spec.md §4.4).
func (c *Classifier) TopFlows(k int) []domain.FlowSummary {
	all := c.allSummaries()
	sort.Slice(all, func(i, j int) bool { return all[i].ByteCount > all[j].ByteCount })
	if k > 0 && k < len(all) {
		all = all[:k]
	}
	return all
}

// Statistics returns the aggregate flow report (spec.md §4.4, §6).
func (c *Classifier) Statistics() domain.FlowStats {
	all := c.allSummaries()
	sort.Slice(all, func(i, j int) bool { return all[i].ByteCount > all[j].ByteCount })

	stats := domain.FlowStats{
		TotalFlows:              len(all),
		ClassificationHistogram: make(map[string]int),
	}
	preview := all
	if len(preview) > 10 {
		preview = preview[:10]
	}
	stats.TopFlows = preview

	for _, fs := range all {
		stats.TotalPackets += fs.PacketCount
		stats.TotalBytes += fs.ByteCount
		stats.ClassificationHistogram[fs.Classification]++
	}
	return stats
}

func (c *Classifier) allSummaries() []domain.FlowSummary {
	var out []domain.FlowSummary
	for _, shard := range c.shards {
		shard.mu.RLock()
		for _, f := range shard.flows {
			out = append(out, summarize(f))
		}
		shard.mu.RUnlock()
	}
	return out
}

func summarize(f *domain.Flow) domain.FlowSummary {
	durationMicros := f.LastSeen - f.FirstSeen
	durationS := float64(durationMicros) / 1e6
	var bps float64
	if durationS > 0 {
		bps = float64(f.ByteCount) / durationS
	}
	return domain.FlowSummary{
		ID:             flowIDString(f.ID),
		Endpoints:      [2]string{f.EndpointLo.String(), f.EndpointHi.String()},
		Protocol:       f.Protocol.String(),
		PacketCount:    f.PacketCount,
		ByteCount:      f.ByteCount,
		FirstSeen:      f.FirstSeen,
		LastSeen:       f.LastSeen,
		Classification: f.Classification,
		Confidence:     f.Confidence,
		DurationS:      durationS,
		BandwidthBps:   bps,
	}
}

func flowIDString(id domain.FlowId) string {
	const hex = "0123456789abcdef"
	out := make([]byte, len(id)*2)
	for i, b := range id {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0x0F]
	}
	return string(out)
}
