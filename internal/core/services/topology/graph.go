// Package topology maintains the live topology graph (spec.md §4.2):
// nodes keyed by canonical address, edges keyed by (src, dst,
// protocol). It is sharded the way wmap's DeviceRegistry shards
// devices (internal/core/services/registry/device_registry.go) —
// numShards independent maps, each behind its own RWMutex, so readers
// and writers on different addresses never contend.
package topology

import (
	"sort"
	"sync"
	"time"

	"github.com/piwardrive/paccore/internal/core/domain"
	"github.com/piwardrive/paccore/internal/core/ports"
)

const numShards = 16

type nodeShard struct {
	mu    sync.RWMutex
	nodes map[string]*domain.TopologyNode
}

type connShard struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionKey]*domain.Connection
}

// Graph is the live topology store. Safe for concurrent use.
type Graph struct {
	nodeShards []*nodeShard
	connShards []*connShard
	oui        ports.OuiDB
}

// NewGraph builds an empty Graph. oui may be nil — vendor lookups are
// then always misses, and VendorKnown stays false (spec.md §9 allows
// the engine to run with no OUI database at all).
func NewGraph(oui ports.OuiDB) *Graph {
	g := &Graph{
		nodeShards: make([]*nodeShard, numShards),
		connShards: make([]*connShard, numShards),
		oui:        oui,
	}
	for i := 0; i < numShards; i++ {
		g.nodeShards[i] = &nodeShard{nodes: make(map[string]*domain.TopologyNode)}
		g.connShards[i] = &connShard{conns: make(map[domain.ConnectionKey]*domain.Connection)}
	}
	return g
}

func shardIndex(key string, n int) int {
	hash := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		hash = (hash ^ uint32(key[i])) * 16777619
	}
	return int(hash % uint32(n))
}

func (g *Graph) nodeShard(key string) *nodeShard {
	return g.nodeShards[shardIndex(key, len(g.nodeShards))]
}

func (g *Graph) connShard(key string) *connShard {
	return g.connShards[shardIndex(key, len(g.connShards))]
}

// Observe records one packet's source and destination endpoints (as
// resolved by the decoder: IP-level when a network layer decoded,
// link-layer otherwise) into the graph
// (spec.md §4.2): both src and dst become/are updated as nodes when
// routable, and the (src,dst,proto) edge is updated, all timestamped
// at tsMicros.
//
// Broadcast/zero MAC addresses are never installed as nodes (spec.md
// §8 property 4) — Routable() enforces this uniformly for both
// endpoints.
func (g *Graph) Observe(src, dst domain.EndpointAddr, proto domain.ProtocolTag, byteLen uint32, tsMicros uint64) {
	if src.Routable() {
		g.upsertNode(src, proto, byteLen, tsMicros)
	}
	if dst.Routable() {
		g.upsertNode(dst, proto, byteLen, tsMicros)
	}
	if src.Routable() && dst.Routable() {
		g.linkNeighbors(src, dst)
		g.upsertConnection(src, dst, proto, byteLen, tsMicros)
	}
}

func (g *Graph) upsertNode(addr domain.EndpointAddr, proto domain.ProtocolTag, byteLen uint32, tsMicros uint64) {
	key := addr.String()
	shard := g.nodeShard(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	n, ok := shard.nodes[key]
	if !ok {
		n = &domain.TopologyNode{
			Addr:      addr,
			FirstSeen: tsMicros,
			Protocols: make(map[domain.ProtocolTag]struct{}),
			Neighbors: make(map[string]domain.EndpointAddr),
		}
		if vendor, known := g.lookupVendor(addr); known {
			n.Vendor = vendor
			n.VendorKnown = true
		}
		n.Class = classify(addr, n)
		shard.nodes[key] = n
	}
	n.LastSeen = tsMicros
	n.PacketCount++
	n.ByteCount += uint64(byteLen)
	n.Protocols[proto] = struct{}{}
}

func (g *Graph) lookupVendor(addr domain.EndpointAddr) (string, bool) {
	if g.oui == nil {
		return "", false
	}
	prefix := addr.OUI()
	if prefix == "" {
		return "", false
	}
	return g.oui.Lookup(prefix)
}

func (g *Graph) linkNeighbors(a, b domain.EndpointAddr) {
	g.addNeighbor(a, b)
	g.addNeighbor(b, a)
}

func (g *Graph) addNeighbor(of, neighbor domain.EndpointAddr) {
	key := of.String()
	shard := g.nodeShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if n, ok := shard.nodes[key]; ok {
		n.Neighbors[neighbor.String()] = neighbor
	}
}

func (g *Graph) upsertConnection(src, dst domain.EndpointAddr, proto domain.ProtocolTag, byteLen uint32, tsMicros uint64) {
	ck := domain.ConnectionKey{Src: src.String(), Dst: dst.String(), Protocol: proto}
	shard := g.connShard(ck.Src + ck.Dst)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	c, ok := shard.conns[ck]
	if !ok {
		c = &domain.Connection{
			Src:       src,
			Dst:       dst,
			Protocol:  proto,
			FirstSeen: tsMicros,
			Flags:     make(map[string]struct{}),
		}
		shard.conns[ck] = c
	}
	c.LastSeen = tsMicros
	c.PacketCount++
	c.ByteCount += uint64(byteLen)
}

// PruneNodes removes nodes (and any connections touching them) whose
// LastSeen is older than olderThanMicros. Used by the analysis engine
// to bound memory on long-running captures (spec.md §4.6).
func (g *Graph) PruneNodes(olderThanMicros uint64) int {
	stale := make(map[string]struct{})
	for _, shard := range g.nodeShards {
		shard.mu.Lock()
		for key, n := range shard.nodes {
			if n.LastSeen < olderThanMicros {
				stale[key] = struct{}{}
				delete(shard.nodes, key)
			}
		}
		shard.mu.Unlock()
	}
	if len(stale) == 0 {
		return 0
	}
	for _, shard := range g.connShards {
		shard.mu.Lock()
		for key := range shard.conns {
			if _, gone := stale[key.Src]; gone {
				delete(shard.conns, key)
				continue
			}
			if _, gone := stale[key.Dst]; gone {
				delete(shard.conns, key)
			}
		}
		shard.mu.Unlock()
	}
	return len(stale)
}

// Snapshot takes a point-in-time, read-only projection of the whole
// graph (spec.md §4.6 "snapshot for reporting").
func (g *Graph) Snapshot(takenAt time.Time) domain.Snapshot {
	var nodes []domain.NodeSummary
	classCounts := make(map[domain.DeviceClass]int)
	protoCounts := make(map[domain.ProtocolTag]int)

	for _, shard := range g.nodeShards {
		shard.mu.RLock()
		for _, n := range shard.nodes {
			nodes = append(nodes, summarizeNode(n))
			classCounts[n.Class]++
			for p := range n.Protocols {
				protoCounts[p]++
			}
		}
		shard.mu.RUnlock()
	}

	var conns []domain.ConnectionSummary
	for _, shard := range g.connShards {
		shard.mu.RLock()
		for _, c := range shard.conns {
			conns = append(conns, summarizeConnection(c))
		}
		shard.mu.RUnlock()
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Addr < nodes[j].Addr })
	sort.Slice(conns, func(i, j int) bool { return conns[i].Src < conns[j].Src })

	return domain.Snapshot{
		Nodes:       nodes,
		Connections: conns,
		Stats: domain.TopologyStats{
			NodeCount:         len(nodes),
			ConnectionCount:   len(conns),
			DeviceClassCounts: classCounts,
			ProtocolCounts:    protoCounts,
		},
		TakenAt: takenAt,
	}
}

func summarizeNode(n *domain.TopologyNode) domain.NodeSummary {
	protos := make([]string, 0, len(n.Protocols))
	for p := range n.Protocols {
		protos = append(protos, p.String())
	}
	sort.Strings(protos)

	neighbors := make([]string, 0, len(n.Neighbors))
	for k := range n.Neighbors {
		neighbors = append(neighbors, k)
	}
	sort.Strings(neighbors)

	return domain.NodeSummary{
		Addr:        n.Addr.String(),
		FirstSeen:   n.FirstSeen,
		LastSeen:    n.LastSeen,
		PacketCount: n.PacketCount,
		ByteCount:   n.ByteCount,
		Protocols:   protos,
		Neighbors:   neighbors,
		Vendor:      n.Vendor,
		Class:       n.Class,
	}
}

func summarizeConnection(c *domain.Connection) domain.ConnectionSummary {
	flags := make([]string, 0, len(c.Flags))
	for f := range c.Flags {
		flags = append(flags, f)
	}
	sort.Strings(flags)

	return domain.ConnectionSummary{
		Src:         c.Src.String(),
		Dst:         c.Dst.String(),
		Protocol:    c.Protocol.String(),
		FirstSeen:   c.FirstSeen,
		LastSeen:    c.LastSeen,
		PacketCount: c.PacketCount,
		ByteCount:   c.ByteCount,
		Flags:       flags,
	}
}
