package anomaly

import "github.com/piwardrive/paccore/internal/core/domain"

// packetRecord is the summary pushed into the rolling buffer (spec.md
// §3 "RollingPacketBuffer").
type packetRecord struct {
	timestamp uint64
	protocol  domain.ProtocolTag
	length    uint32
	src, dst  string
}

// ringBuffer is a fixed-capacity ring; the oldest entry is overwritten
// once full (spec.md §3).
type ringBuffer struct {
	records []packetRecord
	next    int
	count   int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{records: make([]packetRecord, capacity)}
}

func (r *ringBuffer) push(rec packetRecord) {
	r.records[r.next] = rec
	r.next = (r.next + 1) % len(r.records)
	if r.count < len(r.records) {
		r.count++
	}
}

// countSince returns how many buffered records have timestamp >=
// sinceMicros, and how many of those have ProtoUnknown.
func (r *ringBuffer) countSince(sinceMicros uint64) (total, unknown int) {
	for i := 0; i < r.count; i++ {
		rec := r.records[i]
		if rec.timestamp >= sinceMicros {
			total++
			if rec.protocol == domain.ProtoUnknown {
				unknown++
			}
		}
	}
	return total, unknown
}
