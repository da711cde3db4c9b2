package domain

import "time"

// DeviceClass is the coarse heuristic classification assigned to a
// TopologyNode at creation time from its resolved vendor string
// (spec.md §4.3). It is never revised afterward.
type DeviceClass uint8

const (
	ClassUnknown DeviceClass = iota
	ClassRouter
	ClassMobile
	ClassComputer
)

func (c DeviceClass) String() string {
	switch c {
	case ClassRouter:
		return "router"
	case ClassMobile:
		return "mobile"
	case ClassComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// TopologyNode is an observed endpoint in the live topology graph
// (spec.md §3). Created on first sighting, mutated on every packet
// referencing it, never deleted by the core itself — deletion is
// exposed only through the opt-in PruneNodes operation.
type TopologyNode struct {
	Addr        EndpointAddr
	FirstSeen   uint64
	LastSeen    uint64
	PacketCount uint64
	ByteCount   uint64
	Protocols   map[ProtocolTag]struct{}
	Neighbors   map[string]EndpointAddr // keyed by neighbor's canonical string form
	Vendor      string                  // resolved once at creation, never mutated after
	VendorKnown bool
	Class       DeviceClass
}

// NodeSummary is the read-only, de-referenced projection of a
// TopologyNode returned from Snapshot — safe to hold after the graph
// mutates further (spec.md §4.3).
type NodeSummary struct {
	Addr        string
	FirstSeen   uint64
	LastSeen    uint64
	PacketCount uint64
	ByteCount   uint64
	Protocols   []string
	Neighbors   []string
	Vendor      string
	Class       DeviceClass
}

// ConnectionKey identifies a directed (src, dst, protocol) pair
// (spec.md §3).
type ConnectionKey struct {
	Src, Dst string
	Protocol ProtocolTag
}

// Connection is a directed pair of endpoints observed communicating
// over a given protocol (spec.md §3).
type Connection struct {
	Src, Dst    EndpointAddr
	Protocol    ProtocolTag
	FirstSeen   uint64
	LastSeen    uint64
	PacketCount uint64
	ByteCount   uint64
	Flags       map[string]struct{} // reserved for TCP summary flags
}

// ConnectionSummary is the read-only projection of a Connection.
type ConnectionSummary struct {
	Src, Dst    string
	Protocol    string
	FirstSeen   uint64
	LastSeen    uint64
	PacketCount uint64
	ByteCount   uint64
	Flags       []string
}

// TopologyStats are the derived, aggregate statistics a Snapshot
// carries alongside the raw node/connection lists (spec.md §4.3).
type TopologyStats struct {
	NodeCount         int
	ConnectionCount   int
	DeviceClassCounts map[DeviceClass]int
	ProtocolCounts    map[ProtocolTag]int
}

// Snapshot is a consistent, owned read view of the topology graph
// (spec.md §6).
type Snapshot struct {
	Nodes       []NodeSummary
	Connections []ConnectionSummary
	Stats       TopologyStats
	TakenAt     time.Time
}
