// Package ports declares the narrow interfaces the core consumes from
// callers, following wmap's one-interface-per-capability style
// (internal/core/ports/ports.go): services accept a port, never a
// concrete adapter.
package ports

// OuiDB is a read-only MAC24-prefix → vendor lookup (spec.md §6: "the
// engine accepts any implementation exposing `get(prefix) → Option<&str>`").
// Construction — where the data comes from, whether it's backed by
// SQLite, a flat file, or a hardcoded map — is entirely the caller's
// concern; the core never touches the filesystem or network on the
// hot path (spec.md §9).
type OuiDB interface {
	// Lookup returns the vendor string for a 24-bit MAC prefix
	// rendered as "XX:XX:XX" uppercase hex, and whether it was found.
	Lookup(prefix string) (string, bool)
}
