package decoder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwardrive/paccore/internal/core/domain"
)

func ethernetIPv4TCP(sport, dport uint16, flags byte) []byte {
	b := make([]byte, 14+20+20)
	copy(b[0:6], []byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01}) // dst
	copy(b[6:12], []byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02}) // src
	binary.BigEndian.PutUint16(b[12:14], 0x0800)             // IPv4

	ip := b[14:34]
	ip[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(ip[2:4], 40) // total length: 20 header + 20 TCP
	ip[9] = 6                               // TCP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	tcp := b[34:54]
	binary.BigEndian.PutUint16(tcp[0:2], sport)
	binary.BigEndian.PutUint16(tcp[2:4], dport)
	tcp[12] = 5 << 4 // data offset 5
	tcp[13] = flags

	return b
}

func TestDecodePureAndDeterministic(t *testing.T) {
	b := ethernetIPv4TCP(51000, 443, 0x02)
	f1, ok1 := Decode(b, 100, domain.RadiotapNever)
	f2, ok2 := Decode(b, 100, domain.RadiotapNever)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, f1, f2)
}

func TestDecodeEthernetIPv4TCP(t *testing.T) {
	b := ethernetIPv4TCP(51000, 443, 0x02) // SYN
	f, ok := Decode(b, 42, domain.RadiotapNever)
	require.True(t, ok)
	assert.True(t, f.HasNet)
	assert.True(t, f.HasTrans)
	assert.Equal(t, domain.ProtoTCP, f.Protocol)
	assert.Equal(t, domain.TransportTCP, f.Transport.Kind)
	assert.True(t, f.Transport.Flags.SYN)
	assert.False(t, f.Transport.Flags.ACK)
	assert.Equal(t, domain.AppHTTPS, f.AppHint)
	assert.Equal(t, "10.0.0.1", f.SourceAddr.String())
	assert.Equal(t, "10.0.0.2", f.DestAddr.String())
	assert.Empty(t, f.Malformed)
}

func TestDecodeShortFrameRejected(t *testing.T) {
	_, ok := Decode([]byte{1, 2, 3}, 0, domain.RadiotapNever)
	assert.False(t, ok)
}

func TestDecodeBadTCPOffsetFlagged(t *testing.T) {
	b := ethernetIPv4TCP(1, 2, 0)
	b[34+12] = 0 // data offset 0, below minimum of 5
	f, ok := Decode(b, 0, domain.RadiotapNever)
	require.True(t, ok)
	require.Contains(t, f.Malformed, domain.MalformedBadTCPOffset)
	assert.False(t, f.HasTrans)
}

func TestDecodeBadIHLFlagged(t *testing.T) {
	b := ethernetIPv4TCP(1, 2, 0)
	b[14] = 0x44 // version 4, IHL 4 (below minimum of 5)
	f, ok := Decode(b, 0, domain.RadiotapNever)
	require.True(t, ok)
	assert.Contains(t, f.Malformed, domain.MalformedBadIHL)
	assert.False(t, f.HasTrans)
}

func TestDecodeARP(t *testing.T) {
	b := make([]byte, 14+28)
	copy(b[0:6], []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	copy(b[6:12], []byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02})
	binary.BigEndian.PutUint16(b[12:14], 0x0806)

	arp := b[14:]
	binary.BigEndian.PutUint16(arp[0:2], 1)      // hardware type: Ethernet
	binary.BigEndian.PutUint16(arp[2:4], 0x0800) // protocol type: IPv4
	arp[4] = 6                                   // hardware address size
	arp[5] = 4                                   // protocol address size
	binary.BigEndian.PutUint16(arp[6:8], uint16(domain.ArpRequest))
	copy(arp[8:14], []byte{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02})
	copy(arp[14:18], []byte{10, 0, 0, 2})
	copy(arp[24:28], []byte{10, 0, 0, 1})

	f, ok := Decode(b, 0, domain.RadiotapNever)
	require.True(t, ok)
	assert.Equal(t, domain.ProtoARP, f.Protocol)
	assert.Equal(t, domain.ArpRequest, f.Network.Op)
	assert.Equal(t, "10.0.0.2", f.SourceAddr.String())
	assert.Equal(t, "10.0.0.1", f.DestAddr.String())
}

func TestAppHintForPorts(t *testing.T) {
	assert.Equal(t, domain.AppDNS, appHintForPorts(53000, 53))
	assert.Equal(t, domain.AppHTTP, appHintForPorts(80, 40000))
	assert.Equal(t, domain.AppNone, appHintForPorts(12345, 54321))
}
