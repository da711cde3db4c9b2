package domain

import (
	"encoding/binary"
	"fmt"
	"net"
)

// AddrKind tags the variant stored in an EndpointAddr.
type AddrKind uint8

const (
	AddrUnknown AddrKind = iota
	AddrMAC48
	AddrIPv4
	AddrComposite
)

func (k AddrKind) String() string {
	switch k {
	case AddrMAC48:
		return "mac48"
	case AddrIPv4:
		return "ipv4"
	case AddrComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// EndpointAddr is a tagged union over the address forms the core deals
// in: a bare MAC48 (link layer only), a bare IPv4 (network layer, e.g.
// ARP), or a MAC+IP composite (both layers decoded). Equality and
// hashing are always on the canonical byte form, never on any rendered
// string.
type EndpointAddr struct {
	Kind AddrKind
	MAC  [6]byte
	IP   [4]byte
}

var (
	zeroMAC      = [6]byte{}
	broadcastMAC = [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// MAC48Addr builds an EndpointAddr from a 6-byte MAC.
func MAC48Addr(mac [6]byte) EndpointAddr {
	return EndpointAddr{Kind: AddrMAC48, MAC: mac}
}

// IPv4Addr builds an EndpointAddr from a 4-byte IPv4 address.
func IPv4Addr(ip [4]byte) EndpointAddr {
	return EndpointAddr{Kind: AddrIPv4, IP: ip}
}

// CompositeAddr builds an EndpointAddr carrying both a MAC and an IPv4.
func CompositeAddr(mac [6]byte, ip [4]byte) EndpointAddr {
	return EndpointAddr{Kind: AddrComposite, MAC: mac, IP: ip}
}

// MACFromBytes converts a net.HardwareAddr-shaped slice into a fixed
// 6-byte array. Returns false if the slice isn't exactly 6 bytes.
func MACFromBytes(b []byte) ([6]byte, bool) {
	var out [6]byte
	if len(b) != 6 {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

// IPv4FromBytes converts a 4-byte slice into a fixed array.
func IPv4FromBytes(b []byte) ([4]byte, bool) {
	var out [4]byte
	if len(b) != 4 {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

// IsZeroOrBroadcastMAC reports whether mac is the all-zero MAC or the
// broadcast MAC FF:FF:FF:FF:FF:FF — neither is ever installed as a
// topology node (spec.md §3, §8 property 4).
func IsZeroOrBroadcastMAC(mac [6]byte) bool {
	return mac == zeroMAC || mac == broadcastMAC
}

// Routable reports whether this address is eligible to become a
// topology node: it must carry a MAC component that is neither the
// zero MAC nor the broadcast MAC. Bare IPv4 addresses (e.g. from ARP
// bodies with no link-layer MAC attached) are always routable.
func (a EndpointAddr) Routable() bool {
	switch a.Kind {
	case AddrMAC48, AddrComposite:
		return !IsZeroOrBroadcastMAC(a.MAC)
	case AddrIPv4:
		return true
	default:
		return false
	}
}

// CanonicalBytes returns the byte form used for equality, hashing, and
// lexicographic ordering (flow identity canonicalization). The first
// byte is the Kind tag so distinct kinds never collide.
func (a EndpointAddr) CanonicalBytes() [11]byte {
	var out [11]byte
	out[0] = byte(a.Kind)
	copy(out[1:7], a.MAC[:])
	copy(out[7:11], a.IP[:])
	return out
}

// Less implements the strict lexicographic order flow identity relies
// on to pick (lo, hi).
func (a EndpointAddr) Less(b EndpointAddr) bool {
	ab, bb := a.CanonicalBytes(), b.CanonicalBytes()
	for i := range ab {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}
	return false
}

// Equal reports byte-level equality.
func (a EndpointAddr) Equal(b EndpointAddr) bool {
	return a.CanonicalBytes() == b.CanonicalBytes()
}

// OUI returns the 24-bit MAC vendor prefix as "XX:XX:XX" uppercase hex,
// or "" if this address carries no MAC.
func (a EndpointAddr) OUI() string {
	if a.Kind != AddrMAC48 && a.Kind != AddrComposite {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X", a.MAC[0], a.MAC[1], a.MAC[2])
}

// String renders the address at a report boundary: lowercase
// colon-separated MAC, dotted-quad IPv4, or the dotted-quad IPv4 alone
// for a composite (its MAC is not rendered). Internally raw bytes remain canonical; rendering is only
// required here (spec.md §4.1).
func (a EndpointAddr) String() string {
	switch a.Kind {
	case AddrMAC48:
		return macString(a.MAC)
	case AddrIPv4:
		return ipString(a.IP)
	case AddrComposite:
		return ipString(a.IP)
	default:
		return "unknown"
	}
}

func macString(mac [6]byte) string {
	return net.HardwareAddr(mac[:]).String()
}

func ipString(ip [4]byte) string {
	return net.IP(ip[:]).String()
}

// uint32BE is a small helper kept for callers that need the IPv4 as a
// big-endian uint32 (e.g. local-subnet containment checks).
func uint32BE(ip [4]byte) uint32 {
	return binary.BigEndian.Uint32(ip[:])
}
