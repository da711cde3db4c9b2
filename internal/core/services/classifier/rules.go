package classifier

import "github.com/piwardrive/paccore/internal/core/domain"

// applyRules evaluates the precedence-ordered classification table
// (spec.md §4.4 step 4) against the flow's current aggregate state
// and the triggering packet's (proto, sport, dport, byteLen). A
// candidate replaces the flow's current classification only if its
// confidence is strictly greater (spec.md §4.4 step 5) — ties keep
// whichever tier set the classification first, which is always the
// higher-precedence one since rule table is evaluated before port,
// and port before heuristics.
func applyRules(f *domain.Flow, proto domain.ProtocolTag, sport, dport uint16, byteLen uint32) {
	if cls, conf, ok := ruleTableMatch(f, proto, byteLen); ok {
		consider(f, cls, conf, domain.TierRule)
	}
	if cls, conf, ok := portMatch(proto, sport, dport); ok {
		consider(f, cls, conf, domain.TierPort)
	}
	if cls, conf, ok := heuristicMatch(f); ok {
		consider(f, cls, conf, domain.TierHeuristic)
	}
}

func consider(f *domain.Flow, classification string, confidence float32, tier domain.ClassifierTier) {
	if confidence > f.Confidence {
		f.Classification = classification
		f.Confidence = confidence
		f.ClassifiedBy = tier
	}
}

// ruleTableMatch implements spec.md §4.4's default rule table: tuned
// by protocol, packet-size range, and minimum packet-count thresholds.
func ruleTableMatch(f *domain.Flow, proto domain.ProtocolTag, byteLen uint32) (string, float32, bool) {
	if proto != domain.ProtoUDP {
		return "", 0, false
	}
	switch {
	case byteLen >= 50 && byteLen <= 512:
		return "DNS", 0.9, true
	case byteLen >= 300 && byteLen <= 600:
		return "DHCP", 0.8, true
	case f.PacketCount >= 100:
		return "MediaStreaming", 0.7, true
	default:
		return "", 0, false
	}
}

var portServiceNames = map[uint16]string{
	80:  "HTTP",
	443: "HTTPS",
	53:  "DNS",
	67:  "DHCP",
	68:  "DHCP",
	22:  "SSH",
	23:  "Telnet",
	25:  "SMTP",
	110: "POP3",
	143: "IMAP",
	993: "IMAPS",
	995: "POP3S",
}

// portMatch implements the port-based tier: TCP/UDP traffic on a
// well-known port maps to the same named service the decoder's app
// hint table uses (spec.md §4.1, §4.4 step 4).
func portMatch(proto domain.ProtocolTag, sport, dport uint16) (string, float32, bool) {
	if proto != domain.ProtoTCP && proto != domain.ProtoUDP {
		return "", 0, false
	}
	if name, ok := portServiceNames[sport]; ok {
		return name, 0.6, true
	}
	if name, ok := portServiceNames[dport]; ok {
		return name, 0.6, true
	}
	return "", 0, false
}

// heuristicMatch implements the pattern-based heuristics over flow
// aggregates (spec.md §4.4 step 4).
func heuristicMatch(f *domain.Flow) (string, float32, bool) {
	meanSize := float64(0)
	if f.PacketCount > 0 {
		meanSize = float64(f.ByteCount) / float64(f.PacketCount)
	}
	switch {
	case f.ByteCount > 1_000_000 && f.PacketCount > 100 && meanSize > 1000:
		return "VideoStreaming", 0.7, true
	case f.ByteCount > 10_000_000:
		return "FileTransfer", 0.6, true
	case f.PacketCount > 20 && f.ByteCount < 1_000_000:
		return "WebBrowsing", 0.5, true
	default:
		return "", 0, false
	}
}
