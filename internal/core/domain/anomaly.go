package domain

// Severity ranks an AnomalyReport (spec.md §3).
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// AnomalyKind names the anomaly taxonomy (spec.md §3, §4.5), 1:1 with
// the original `AnomalyType` enum in
// original_source/.../packet_engine.py, narrowed to the kinds this
// core actually emits (payload-content anomalies are out of scope —
// the core never inspects 802.11 payload bytes).
type AnomalyKind string

const (
	AnomalyMalformedPacket     AnomalyKind = "malformed_packet"
	AnomalyProtocolViolation   AnomalyKind = "protocol_violation"
	AnomalyRateLimitExceeded   AnomalyKind = "rate_limit_exceeded"
	AnomalyUnexpectedProtocol  AnomalyKind = "unexpected_protocol"
)

// AnomalyReport is immutable once emitted (spec.md §3).
type AnomalyReport struct {
	ID          string
	Kind        AnomalyKind
	Protocol    ProtocolTag
	Src, Dst    string
	Description string
	Severity    Severity
	Confidence  float32
	Timestamp   uint64
	Extra       map[string]any
}
