package domain

// DecodedSummary is the report-boundary, string-rendered projection of
// a DecodedFrame (spec.md §6) — addresses rendered, layers flattened
// to tags rather than the decoder's internal tagged-union shape.
type DecodedSummary struct {
	Timestamp  uint64
	TotalLen   uint32
	Protocol   string
	SourceAddr string
	DestAddr   string
	AppHint    string
	Direction  string
}

// Report is the per-packet output of Engine.Analyze (spec.md §6).
type Report struct {
	ID             string
	ParseError     bool
	Decoded        DecodedSummary
	Classification string // empty if none yet
	Anomalies      []AnomalyReport
}

// RuntimeSummary is Engine.Summary()'s output (spec.md §6, §4.6).
type RuntimeSummary struct {
	RuntimeS          float64
	Packets           uint64
	Bytes             uint64
	PacketsPerSecond  float64
	BytesPerSecond    float64
	ProtocolsDetected map[string]uint64
	Topology          Snapshot
	Flows             FlowStats
}
