package domain

// FlowId is the 128-bit content-addressed flow fingerprint (spec.md
// §3, §9): a fixed 16-byte array is comparable and map-keyable, and
// comparing two FlowIds costs two uint64 compares — no pointer chase,
// no allocation.
type FlowId [16]byte

// Flow is a bidirectional conversation between two endpoints over a
// single protocol (spec.md §3). Both directions collapse onto the
// same Flow via the canonical FlowId.
type Flow struct {
	ID             FlowId
	EndpointLo     EndpointAddr // canonical order: Less(EndpointHi)
	EndpointHi     EndpointAddr
	Protocol       ProtocolTag
	PacketCount    uint64
	ByteCount      uint64
	FirstSeen      uint64
	LastSeen       uint64
	Classification string
	Confidence     float32
	// ClassifiedBy records which precedence tier produced the current
	// Classification. Same-confidence ties are not decided from this
	// field: the classifier evaluates rule table, then port lookup,
	// then heuristics, and keeps the first of equal confidences.
	ClassifiedBy ClassifierTier
}

// ClassifierTier names the precedence tier that produced a
// classification (spec.md §4.4).
type ClassifierTier uint8

const (
	TierNone ClassifierTier = iota
	TierHeuristic
	TierPort
	TierRule
)

// FlowSummary is the read-only projection of a Flow returned from
// TopFlows/Statistics (spec.md §6), with derived bandwidth/duration
// fields supplementing the distilled spec per SPEC_FULL.md §5.
type FlowSummary struct {
	ID             string
	Endpoints      [2]string
	Protocol       string
	PacketCount    uint64
	ByteCount      uint64
	FirstSeen      uint64
	LastSeen       uint64
	Classification string
	Confidence     float32
	DurationS      float64
	BandwidthBps   float64
}

// FlowStats is the aggregate flow-classifier report (spec.md §6).
type FlowStats struct {
	TotalFlows               int
	TotalPackets             uint64
	TotalBytes               uint64
	ClassificationHistogram  map[string]int
	TopFlows                 []FlowSummary
}
