package anomaly

import (
	"strconv"
	"sync"

	"github.com/piwardrive/paccore/internal/core/domain"
)

// connKey is the canonical, direction-independent identity for a TCP
// connection: the two (addr, port) endpoints in a fixed order so a
// reply packet resolves to the same tracker entry as the original
// (spec.md §4.5.1: "inverse pair lookups handle replies").
type connKey struct {
	a, b string
}

func canonicalKey(src, dst string, sport, dport uint16) connKey {
	sKey := src + ":" + strconv.Itoa(int(sport))
	dKey := dst + ":" + strconv.Itoa(int(dport))
	if sKey <= dKey {
		return connKey{a: sKey, b: dKey}
	}
	return connKey{a: dKey, b: sKey}
}

// TCPTracker mirrors the simplified TCP connection lifecycle (spec.md
// §4.5.1, GLOSSARY) purely from control-bit combinations — enough to
// flag violations, never enough to reconstruct a stream.
type TCPTracker struct {
	mu      sync.Mutex
	entries map[connKey]*domain.TcpState
}

// NewTCPTracker builds an empty tracker.
func NewTCPTracker() *TCPTracker {
	return &TCPTracker{entries: make(map[connKey]*domain.TcpState)}
}

// Observe advances the state machine for one TCP segment and reports
// whether this transition was unexpected (spec.md §4.5.1: "do not
// corrupt the state — remain where you are" on violation).
func (t *TCPTracker) Observe(src, dst string, sport, dport uint16, flags domain.TCPFlags, seq, ack uint32, tsMicros uint64) (violation bool) {
	key := canonicalKey(src, dst, sport, dport)

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.entries[key]
	if !ok {
		st = &domain.TcpState{State: domain.TcpClosed}
		t.entries[key] = st
	}

	next, ok2 := transition(st.State, flags)
	if !ok2 {
		violation = true
	} else {
		st.State = next
		if next == domain.TcpTimeWait {
			st.TimeWaitAt = tsMicros
		}
	}
	st.LastSeq = seq
	st.LastAck = ack
	st.LastUpdate = tsMicros
	return violation
}

// transition applies the control-bit-driven FSM. The bool result is
// false when the combination is unexpected for the current state; the
// caller keeps the existing state in that case.
func transition(state domain.TcpConnState, f domain.TCPFlags) (domain.TcpConnState, bool) {
	synOnly := f.SYN && !f.ACK
	synAck := f.SYN && f.ACK
	ackOnly := f.ACK && !f.SYN && !f.FIN && !f.RST

	switch state {
	case domain.TcpClosed:
		if synOnly {
			return domain.TcpSynSent, true
		}
		return state, false
	case domain.TcpSynSent:
		if synAck {
			return domain.TcpSynRcvd, true
		}
		if synOnly {
			return state, true // retransmit
		}
		return state, false
	case domain.TcpSynRcvd:
		if ackOnly {
			return domain.TcpEstablished, true
		}
		return state, false
	case domain.TcpEstablished:
		if f.RST {
			return domain.TcpClosed, true
		}
		if f.FIN {
			return domain.TcpFinWait, true
		}
		if f.SYN {
			return state, false
		}
		return state, true
	case domain.TcpFinWait:
		if f.FIN {
			return domain.TcpClosing, true
		}
		if ackOnly {
			return domain.TcpTimeWait, true
		}
		return state, false
	case domain.TcpClosing:
		if ackOnly {
			return domain.TcpTimeWait, true
		}
		return state, false
	case domain.TcpTimeWait:
		return state, true
	default:
		return state, false
	}
}

// Evict drops TimeWait entries older than timeWaitFactor×flowTTL and
// any entry idle longer than flowTTL (spec.md §4.5.1).
func (t *TCPTracker) Evict(nowMicros, flowTTLMicros uint64, timeWaitFactor int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, st := range t.entries {
		if nowMicros-st.LastUpdate > flowTTLMicros {
			delete(t.entries, key)
			removed++
			continue
		}
		if st.State == domain.TcpTimeWait && nowMicros-st.TimeWaitAt > uint64(timeWaitFactor)*flowTTLMicros {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}
