package topology

import (
	"strings"

	"github.com/piwardrive/paccore/internal/core/domain"
)

// classify assigns a DeviceClass once, at node creation, from the
// resolved vendor string, by the literal substring policy (spec.md
// §4.3): "router"/"gateway" → Router, "phone"/"mobile" → Mobile,
// "laptop"/"computer" → Computer, else Unknown.
func classify(addr domain.EndpointAddr, n *domain.TopologyNode) domain.DeviceClass {
	if !n.VendorKnown {
		return domain.ClassUnknown
	}
	vendor := strings.ToLower(n.Vendor)
	switch {
	case containsAny(vendor, "router", "gateway"):
		return domain.ClassRouter
	case containsAny(vendor, "phone", "mobile"):
		return domain.ClassMobile
	case containsAny(vendor, "laptop", "computer"):
		return domain.ClassComputer
	default:
		return domain.ClassUnknown
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
