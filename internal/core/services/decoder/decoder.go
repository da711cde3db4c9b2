// Package decoder implements the Frame Decoder (spec.md §4.1): a set
// of pure functions turning a raw byte slice into a layered
// DecodedFrame. It never allocates owned buffers beyond the returned
// struct, and never mutates or stores the input.
//
// Grounded on wmap's internal/adapters/sniffer/parser/packet_handler.go
// and on the retrieved KleaSCM-netscope example
// (internal/parser/ethernet.go, ip.go, transport.go): both decode off
// a gopacket.Packet via packet.Layer(layers.LayerType*) rather than
// hand-rolled offset math. PACCORE follows the same pattern for every
// layer — RadioTap/Dot11, Ethernet, IPv4, ARP, TCP, UDP — and projects
// the decoded layers into the spec's tagged-union DecodedFrame.
package decoder

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/piwardrive/paccore/internal/core/domain"
)

const minFrameLen = 14

// Decode turns raw on-wire bytes plus a caller-supplied timestamp
// (microseconds since epoch) into a DecodedFrame. It returns
// (nil, false) only when the buffer is shorter than the smallest
// structure any recognizer needs (spec.md §4.1: "returns None if the
// frame is shorter than 14 bytes or fails every recognizer").
//
// Decode has no side effects and is deterministic for a given (b, ts)
// pair (spec.md §8 property 1).
func Decode(b []byte, ts uint64, mode domain.RadiotapMode) (*domain.DecodedFrame, bool) {
	if len(b) < minFrameLen {
		return nil, false
	}

	f := &domain.DecodedFrame{
		Timestamp: ts,
		TotalLen:  uint32(len(b)),
	}

	radiotapPresent := false
	switch mode {
	case domain.RadiotapAlways:
		radiotapPresent = true
	case domain.RadiotapNever:
		radiotapPresent = false
	default: // RadiotapAuto
		radiotapPresent = len(b) >= 2 && b[0] == 0x00 && b[1] == 0x00
	}

	if radiotapPresent {
		decodeDot11(b, f)
	} else {
		decodeEthernet(b, f)
	}

	resolveAddresses(f)
	resolveAppHint(f)
	return f, true
}

func decodeDot11(b []byte, f *domain.DecodedFrame) {
	pkt := gopacket.NewPacket(b, layers.LayerTypeRadioTap, gopacket.NoCopy)

	dot11Layer := pkt.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		return
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		return
	}

	link := domain.LinkLayer{Kind: domain.LinkDot11}
	if a1, ok := domain.MACFromBytes(dot11.Address1); ok {
		link.Addr1 = domain.MAC48Addr(a1)
	}
	if a2, ok := domain.MACFromBytes(dot11.Address2); ok {
		link.Addr2 = domain.MAC48Addr(a2)
	}
	if a3, ok := domain.MACFromBytes(dot11.Address3); ok {
		link.Addr3 = domain.MAC48Addr(a3)
	}
	link.Dot11Subtype = uint8(dot11.Type) >> 2

	switch dot11.Type.MainType() {
	case layers.Dot11TypeMgmt:
		link.Dot11FrameType = domain.Dot11Mgmt
	case layers.Dot11TypeCtrl:
		link.Dot11FrameType = domain.Dot11Ctrl
	case layers.Dot11TypeData:
		link.Dot11FrameType = domain.Dot11Data
	default:
		link.Dot11FrameType = domain.Dot11Unknown
	}

	f.Link = link
	f.Protocol = domain.ProtoDot11
}

// decodeEthernet builds a gopacket.Packet rooted at the Ethernet
// layer and projects whatever layers gopacket successfully decoded
// (Ethernet, then IPv4/ARP, then TCP/UDP/ICMPv4) into f. gopacket
// records a decode failure on packet.ErrorLayer() instead of an error
// value per layer, and a failed IPv4 or TCP layer may be missing from
// packet.Layer(...) or present with an IHL / data offset below 5;
// decodeIPv4 and decodeTCP treat both cases as a failed layer. Since
// the spec needs a specific MalformedReason (short vs. bad-IHL vs.
// bad-offset) rather than gopacket's generic decode-failure message,
// the classify* helpers below peek at the handful of header bytes
// involved, purely to pick the right taxonomy tag.
func decodeEthernet(b []byte, f *domain.DecodedFrame) {
	pkt := gopacket.NewPacket(b, layers.LayerTypeEthernet, gopacket.NoCopy)

	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		return
	}
	eth := ethLayer.(*layers.Ethernet)

	link := domain.LinkLayer{Kind: domain.LinkEthernet, EtherType: uint16(eth.EthernetType)}
	if dst, ok := domain.MACFromBytes(eth.DstMAC); ok {
		link.Dst = domain.MAC48Addr(dst)
	}
	if src, ok := domain.MACFromBytes(eth.SrcMAC); ok {
		link.Src = domain.MAC48Addr(src)
	}
	f.Link = link
	f.Protocol = domain.ProtoEthernet

	payload := eth.LayerPayload()
	switch eth.EthernetType {
	case layers.EthernetTypeIPv4:
		decodeIPv4(pkt, payload, f)
	case layers.EthernetTypeARP:
		decodeARP(pkt, payload, f)
	}
}

func decodeIPv4(pkt gopacket.Packet, payload []byte, f *domain.DecodedFrame) {
	ip4, _ := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if ip4 == nil || ip4.IHL < 5 {
		classifyIPv4Malformed(payload, f)
		return
	}

	net := domain.Network{Kind: domain.NetworkIPv4, IHL: ip4.IHL}
	if src, ok := domain.IPv4FromBytes(ip4.SrcIP.To4()); ok {
		net.Src = domain.IPv4Addr(src)
	}
	if dst, ok := domain.IPv4FromBytes(ip4.DstIP.To4()); ok {
		net.Dst = domain.IPv4Addr(dst)
	}

	switch ip4.Protocol {
	case layers.IPProtocolTCP:
		net.IPProto = domain.ProtoTCP
	case layers.IPProtocolUDP:
		net.IPProto = domain.ProtoUDP
	case layers.IPProtocolICMPv4:
		net.IPProto = domain.ProtoICMP
	default:
		net.IPProto = domain.ProtoUnknown
	}

	f.HasNet = true
	f.Network = net
	f.Protocol = net.IPProto

	switch net.IPProto {
	case domain.ProtoTCP:
		decodeTCP(pkt, ip4.LayerPayload(), f)
	case domain.ProtoUDP:
		decodeUDP(pkt, ip4.LayerPayload(), f)
	case domain.ProtoICMP:
		if pkt.Layer(layers.LayerTypeICMPv4) != nil {
			f.HasTrans = true
			f.Transport = domain.Transport{Kind: domain.TransportICMP}
		}
	}
}

// classifyIPv4Malformed peeks the version/IHL nibble gopacket already
// rejected, the only way to distinguish "too short to have a header at
// all" from "header present but IHL below the minimum" (spec.md §4.1).
func classifyIPv4Malformed(payload []byte, f *domain.DecodedFrame) {
	if len(payload) < 1 {
		f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		return
	}
	if payload[0]&0x0F < 5 {
		f.Malformed = append(f.Malformed, domain.MalformedBadIHL)
		return
	}
	f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
}

func decodeTCP(pkt gopacket.Packet, payload []byte, f *domain.DecodedFrame) {
	tcp, _ := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if tcp == nil || tcp.DataOffset < 5 {
		classifyTCPMalformed(payload, f)
		return
	}

	f.HasTrans = true
	f.Transport = domain.Transport{
		Kind:  domain.TransportTCP,
		SPort: uint16(tcp.SrcPort),
		DPort: uint16(tcp.DstPort),
		Seq:   tcp.Seq,
		Ack:   tcp.Ack,
		Flags: domain.TCPFlags{
			URG: tcp.URG,
			ACK: tcp.ACK,
			PSH: tcp.PSH,
			RST: tcp.RST,
			SYN: tcp.SYN,
			FIN: tcp.FIN,
		},
	}
}

// classifyTCPMalformed peeks the data-offset nibble gopacket already
// rejected, distinguishing a too-short segment from one with a data
// offset below the minimum header size (spec.md §4.1).
func classifyTCPMalformed(payload []byte, f *domain.DecodedFrame) {
	if len(payload) < 20 {
		f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		return
	}
	if payload[12]>>4 < 5 {
		f.Malformed = append(f.Malformed, domain.MalformedBadTCPOffset)
		return
	}
	f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
}

func decodeUDP(pkt gopacket.Packet, payload []byte, f *domain.DecodedFrame) {
	udpLayer := pkt.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		if len(payload) < 8 {
			f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		} else {
			f.Malformed = append(f.Malformed, domain.MalformedBadUDPLength)
		}
		return
	}
	udp := udpLayer.(*layers.UDP)

	// gopacket trims/truncates Payload to whatever's available rather
	// than erroring on a length mismatch; the spec wants that
	// mismatch itself flagged (spec.md §4.1 "UDP length mismatching
	// buffer"), so compare the header's claimed Length against what
	// was actually on the wire.
	if int(udp.Length) < 8 || int(udp.Length) > len(payload) {
		f.Malformed = append(f.Malformed, domain.MalformedBadUDPLength)
	}

	t := domain.Transport{
		Kind:  domain.TransportUDP,
		SPort: uint16(udp.SrcPort),
		DPort: uint16(udp.DstPort),
	}
	f.HasTrans = true
	f.Transport = t

	// DHCP shape check: BOOTP/DHCP payloads must be at least 236
	// bytes before options (spec.md §4.1).
	if (t.SPort == 67 || t.SPort == 68 || t.DPort == 67 || t.DPort == 68) && len(udp.Payload) < 236 {
		f.Malformed = append(f.Malformed, domain.MalformedShortDHCP)
	}
}

func decodeARP(pkt gopacket.Packet, payload []byte, f *domain.DecodedFrame) {
	arpLayer := pkt.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		f.Malformed = append(f.Malformed, domain.MalformedShortFrame)
		return
	}
	arp := arpLayer.(*layers.ARP)

	net := domain.Network{Kind: domain.NetworkARP, Op: domain.ArpOp(arp.Operation)}
	if hw, ok := domain.MACFromBytes(arp.SourceHwAddress); ok {
		net.SenderHW = domain.MAC48Addr(hw)
	}
	if ip, ok := domain.IPv4FromBytes(arp.SourceProtAddress); ok {
		net.SenderIP = domain.IPv4Addr(ip)
	}
	if hw, ok := domain.MACFromBytes(arp.DstHwAddress); ok {
		net.TargetHW = domain.MAC48Addr(hw)
	}
	if ip, ok := domain.IPv4FromBytes(arp.DstProtAddress); ok {
		net.TargetIP = domain.IPv4Addr(ip)
	}
	f.HasNet = true
	f.Network = net
	f.Protocol = domain.ProtoARP
}

// resolveAddresses applies spec.md §4.1's source/dest selection rule:
// if the network layer decoded, use IP addresses; else use
// link-layer addresses.
func resolveAddresses(f *domain.DecodedFrame) {
	if f.HasNet {
		switch f.Network.Kind {
		case domain.NetworkIPv4:
			f.SourceAddr = f.Network.Src
			f.DestAddr = f.Network.Dst
			return
		case domain.NetworkARP:
			f.SourceAddr = f.Network.SenderIP
			f.DestAddr = f.Network.TargetIP
			return
		}
	}

	switch f.Link.Kind {
	case domain.LinkDot11:
		// Non-management frames: (addr2, addr1) = (source, dest)
		// per spec.md §3.
		f.SourceAddr = f.Link.Addr2
		f.DestAddr = f.Link.Addr1
	case domain.LinkEthernet:
		f.SourceAddr = f.Link.Src
		f.DestAddr = f.Link.Dst
	}
}

func resolveAppHint(f *domain.DecodedFrame) {
	if !f.HasTrans {
		return
	}
	var sport, dport uint16
	switch f.Transport.Kind {
	case domain.TransportTCP, domain.TransportUDP:
		sport, dport = f.Transport.SPort, f.Transport.DPort
	default:
		return
	}
	f.AppHint = appHintForPorts(sport, dport)
}
