package decoder

import "github.com/piwardrive/paccore/internal/core/domain"

// appHintForPorts applies spec.md §4.1's port-only application hint
// table. It never inspects payload bytes — a port match is a hint, not
// a proof, and SPEC_FULL.md §5 is explicit that no TLS/ALPN parsing
// backs the HTTPS hint.
func appHintForPorts(sport, dport uint16) domain.AppProto {
	for _, p := range [2]uint16{sport, dport} {
		switch p {
		case 80:
			return domain.AppHTTP
		case 443:
			return domain.AppHTTPS
		case 53:
			return domain.AppDNS
		case 67, 68:
			return domain.AppDHCP
		case 22:
			return domain.AppSSH
		case 23:
			return domain.AppTelnet
		case 25:
			return domain.AppSMTP
		case 110:
			return domain.AppPOP3
		case 143:
			return domain.AppIMAP
		case 993:
			return domain.AppIMAPS
		case 995:
			return domain.AppPOP3S
		}
	}
	return domain.AppNone
}
