package domain

import (
	"fmt"
	"net"
	"time"
)

// RadiotapMode controls how the decoder decides whether a frame is
// prefixed with a radiotap pseudo-header. spec.md §9 flags the
// original Python heuristic ("first two bytes are 0x0000") as
// exactly that — a heuristic, not a standard — and allows an
// implementer to instead require a sentinel from the capture source.
// PACCORE exposes both as configuration rather than guessing.
type RadiotapMode uint8

const (
	// RadiotapAuto applies the spec.md §4.1 heuristic: first two
	// bytes 0x00 0x00 means radiotap is present.
	RadiotapAuto RadiotapMode = iota
	// RadiotapAlways assumes every frame carries a radiotap header,
	// for capture sources that guarantee it out of band.
	RadiotapAlways
	// RadiotapNever assumes no frame carries radiotap — every frame
	// is decoded as Ethernet II.
	RadiotapNever
)

// Config holds the tunables the core accepts (spec.md §6). Zero value
// is never valid on its own — start from DefaultConfig.
type Config struct {
	FlowTTL                       time.Duration
	DetectionWindow               time.Duration
	PacketRateThresholdPPS        float64
	ByteRateThresholdBPS          float64 // reserved, not currently enforced (spec.md §6)
	UnknownProtocolRatioThreshold float64
	RollingBufferCapacity         int
	TCPTimeWaitFactor             int

	// LocalNets resolves Direction when non-empty (SPEC_FULL.md §5);
	// with no nets configured, Direction is always DirUnknown.
	LocalNets []net.IPNet

	AssumeRadiotap RadiotapMode
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		FlowTTL:                       300 * time.Second,
		DetectionWindow:               60 * time.Second,
		PacketRateThresholdPPS:        1000,
		ByteRateThresholdBPS:          10_000_000,
		UnknownProtocolRatioThreshold: 0.10,
		RollingBufferCapacity:         10_000,
		TCPTimeWaitFactor:             2,
		AssumeRadiotap:                RadiotapAuto,
	}
}

// ConfigError is a setup-time-only error: invalid thresholds or a zero
// buffer capacity must cause construction to fail, never be recovered
// from on the hot path (spec.md §7 "ConfigError (setup-time only)").
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("paccore: invalid config field %q=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var errMustBePositive = fmt.Errorf("must be positive")
var errMustBeInRange01 = fmt.Errorf("must be in [0,1]")

// Validate checks the invariants spec.md §7 requires the constructors
// to enforce before accepting a Config.
func (c Config) Validate() error {
	if c.FlowTTL <= 0 {
		return &ConfigError{Field: "FlowTTL", Value: c.FlowTTL, Err: errMustBePositive}
	}
	if c.DetectionWindow <= 0 {
		return &ConfigError{Field: "DetectionWindow", Value: c.DetectionWindow, Err: errMustBePositive}
	}
	if c.PacketRateThresholdPPS <= 0 {
		return &ConfigError{Field: "PacketRateThresholdPPS", Value: c.PacketRateThresholdPPS, Err: errMustBePositive}
	}
	if c.UnknownProtocolRatioThreshold < 0 || c.UnknownProtocolRatioThreshold > 1 {
		return &ConfigError{Field: "UnknownProtocolRatioThreshold", Value: c.UnknownProtocolRatioThreshold, Err: errMustBeInRange01}
	}
	if c.RollingBufferCapacity <= 0 {
		return &ConfigError{Field: "RollingBufferCapacity", Value: c.RollingBufferCapacity, Err: errMustBePositive}
	}
	if c.TCPTimeWaitFactor <= 0 {
		return &ConfigError{Field: "TCPTimeWaitFactor", Value: c.TCPTimeWaitFactor, Err: errMustBePositive}
	}
	return nil
}

// InLocalNets reports whether ip falls inside any configured local
// subnet.
func (c Config) InLocalNets(ip [4]byte) bool {
	addr := net.IP(ip[:])
	for _, n := range c.LocalNets {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}
