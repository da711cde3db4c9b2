package domain

// TcpConnState is the simplified TCP connection lifecycle the tracker
// mirrors — enough to flag violations, never enough (nor intended) to
// reconstruct a stream (spec.md §4.5.1, GLOSSARY).
type TcpConnState uint8

const (
	TcpClosed TcpConnState = iota
	TcpSynSent
	TcpSynRcvd
	TcpEstablished
	TcpFinWait
	TcpClosing
	TcpTimeWait
)

func (s TcpConnState) String() string {
	switch s {
	case TcpSynSent:
		return "syn_sent"
	case TcpSynRcvd:
		return "syn_rcvd"
	case TcpEstablished:
		return "established"
	case TcpFinWait:
		return "fin_wait"
	case TcpClosing:
		return "closing"
	case TcpTimeWait:
		return "time_wait"
	default:
		return "closed"
	}
}

// TcpSocketKey identifies an ordered pair for TCP state tracking
// (spec.md §3: "(src, sport, dst, dport)").
type TcpSocketKey struct {
	Src, Dst     string
	SPort, DPort uint16
}

// TcpState is the per-ordered-pair TCP tracker entry (spec.md §3).
type TcpState struct {
	State      TcpConnState
	LastSeq    uint32
	LastAck    uint32
	LastUpdate uint64
	TimeWaitAt uint64 // set when entering TimeWait, for the 2×flow_ttl eviction rule
}
