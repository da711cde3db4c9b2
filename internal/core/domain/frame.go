package domain

// ProtocolTag identifies the protocol a Connection/Flow/anomaly is
// attributed to. It is deliberately a small closed enum rather than a
// string so Connection/Flow keys stay comparable and cheap to hash.
type ProtocolTag uint8

const (
	ProtoUnknown ProtocolTag = iota
	ProtoTCP
	ProtoUDP
	ProtoICMP
	ProtoARP
	ProtoDot11
	ProtoEthernet
)

func (p ProtocolTag) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	case ProtoICMP:
		return "icmp"
	case ProtoARP:
		return "arp"
	case ProtoDot11:
		return "802.11"
	case ProtoEthernet:
		return "ethernet"
	default:
		return "unknown"
	}
}

// LinkKind tags the LinkLayer variant.
type LinkKind uint8

const (
	LinkUnknown LinkKind = iota
	LinkDot11
	LinkEthernet
)

// Dot11Type is the coarse 802.11 frame type (management/control/data),
// not the full type+subtype pair — the subtype is kept separately so
// rule code can switch on either granularity.
type Dot11Type uint8

const (
	Dot11Unknown Dot11Type = iota
	Dot11Mgmt
	Dot11Ctrl
	Dot11Data
)

// LinkLayer is the tagged union for link-layer framing (spec.md §3).
type LinkLayer struct {
	Kind LinkKind

	// Dot11 fields
	Addr1, Addr2, Addr3 EndpointAddr
	Dot11FrameType      Dot11Type
	Dot11Subtype        uint8

	// Ethernet fields
	Src, Dst  EndpointAddr
	EtherType uint16
}

// NetworkKind tags the Network variant.
type NetworkKind uint8

const (
	NetworkNone NetworkKind = iota
	NetworkIPv4
	NetworkARP
)

// ArpOp is the ARP operation code.
type ArpOp uint16

const (
	ArpRequest ArpOp = 1
	ArpReply   ArpOp = 2
)

// Network is the tagged union for the network layer (spec.md §3).
type Network struct {
	Kind NetworkKind

	// IPv4 fields
	Src, Dst EndpointAddr
	IPProto  ProtocolTag // ProtoTCP / ProtoUDP / ProtoICMP / ProtoUnknown
	IHL      uint8

	// ARP fields
	SenderHW, TargetHW EndpointAddr
	SenderIP, TargetIP EndpointAddr
	Op                 ArpOp
}

// TransportKind tags the Transport variant.
type TransportKind uint8

const (
	TransportNone TransportKind = iota
	TransportTCP
	TransportUDP
	TransportICMP
)

// TCPFlags mirrors the subset of TCP control bits the spec's state
// tracker needs.
type TCPFlags struct {
	SYN, ACK, FIN, RST, PSH, URG bool
}

// Transport is the tagged union for the transport layer (spec.md §3).
type Transport struct {
	Kind        TransportKind
	SPort       uint16
	DPort       uint16
	Seq         uint32
	Ack         uint32
	Flags       TCPFlags
}

// AppProto is the best-effort application-layer hint, derived only
// from well-known ports or frame shape — never from payload inspection
// beyond the literal length checks spec.md §4.1 calls out.
type AppProto uint8

const (
	AppNone AppProto = iota
	AppHTTP
	AppHTTPS
	AppDNS
	AppDHCP
	AppSSH
	AppTelnet
	AppSMTP
	AppPOP3
	AppIMAP
	AppIMAPS
	AppPOP3S
)

func (a AppProto) String() string {
	switch a {
	case AppHTTP:
		return "http"
	case AppHTTPS:
		return "https"
	case AppDNS:
		return "dns"
	case AppDHCP:
		return "dhcp"
	case AppSSH:
		return "ssh"
	case AppTelnet:
		return "telnet"
	case AppSMTP:
		return "smtp"
	case AppPOP3:
		return "pop3"
	case AppIMAP:
		return "imap"
	case AppIMAPS:
		return "imaps"
	case AppPOP3S:
		return "pop3s"
	default:
		return ""
	}
}

// Direction is computed only when the caller supplies a local-subnet
// filter (Config.LocalNets); with none configured it is always
// DirUnknown, per spec.md §9's open question on the original's
// never-computed direction field.
type Direction uint8

const (
	DirUnknown Direction = iota
	DirInbound
	DirOutbound
	DirLateral
)

func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	case DirLateral:
		return "lateral"
	default:
		return "unknown"
	}
}

// DecodedFrame is the ephemeral, per-packet output of the Frame
// Decoder. It is never stored: created by Decode, consumed within the
// same analyze() call chain, and discarded (spec.md §3).
type DecodedFrame struct {
	Timestamp uint64 // microseconds since epoch
	TotalLen  uint32

	Link      LinkLayer
	HasNet    bool
	Network   Network
	HasTrans  bool
	Transport Transport
	AppHint   AppProto

	SourceAddr EndpointAddr
	DestAddr   EndpointAddr
	Protocol   ProtocolTag
	Direction  Direction

	// Malformed records the edge-case reasons decode encountered so
	// the anomaly detector can emit MalformedPacket without redoing
	// the parse (spec.md §4.1, §7).
	Malformed []MalformedReason
}

// MalformedReason names a specific decode-time edge case (spec.md §4.1,
// §7's MalformedField taxonomy entry).
type MalformedReason string

const (
	MalformedShortFrame    MalformedReason = "short_frame"
	MalformedBadIHL        MalformedReason = "bad_ihl"
	MalformedBadTCPOffset  MalformedReason = "bad_tcp_offset"
	MalformedBadUDPLength  MalformedReason = "bad_udp_length"
	MalformedShortDHCP     MalformedReason = "short_dhcp"
)
