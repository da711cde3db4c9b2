// Package flowid computes content-addressed flow identifiers
// (spec.md §4.3): a 128-bit id derived from the two endpoints and the
// protocol, canonically ordered so (a,b) and (b,a) hash identically
// (spec.md §8 property 2).
//
// Two hashers are offered, mirroring wmap's own split between a
// cryptographic default and a fast path for shard routing
// (internal/core/services/registry/device_registry.go uses
// cespare/xxhash/v2 to pick a shard; here it does the same job for
// ShardedEngine while blake2b backs the identity that flows are
// keyed and compared by).
package flowid

import (
	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/piwardrive/paccore/internal/core/domain"
)

// canonicalBytes returns the 23-byte buffer hashed into a flow id:
// the lexicographically-smaller endpoint, then the larger, then the
// protocol tag. Ordering first means ID(a, b, p) == ID(b, a, p).
func canonicalBytes(a, b domain.EndpointAddr, proto domain.ProtocolTag) [23]byte {
	var out [23]byte
	lo, hi := a, b
	if hi.Less(lo) {
		lo, hi = hi, lo
	}
	loB, hiB := lo.CanonicalBytes(), hi.CanonicalBytes()
	copy(out[0:11], loB[:])
	copy(out[11:22], hiB[:])
	out[22] = byte(proto)
	return out
}

// ID computes the default, cryptographic-strength flow identifier
// (spec.md §4.3: "collision probability negligible for the lifetime of
// a single capture session").
func ID(a, b domain.EndpointAddr, proto domain.ProtocolTag) domain.FlowId {
	buf := canonicalBytes(a, b, proto)
	sum := blake2b.Sum256(buf[:])
	var id domain.FlowId
	copy(id[:], sum[:16])
	return id
}

// FastID computes a cheaper, non-cryptographic identifier suitable
// only for shard routing (ShardedEngine) where collision resistance
// does not matter and throughput does.
func FastID(a, b domain.EndpointAddr, proto domain.ProtocolTag) uint64 {
	buf := canonicalBytes(a, b, proto)
	return xxhash.Sum64(buf[:])
}

// Endpoints returns (lo, hi) in the same canonical order ID used to
// build the identifier, so callers can populate Flow.EndpointLo/Hi
// consistently.
func Endpoints(a, b domain.EndpointAddr) (lo, hi domain.EndpointAddr) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}
