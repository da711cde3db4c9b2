// Package config loads the runtime Config for the demo binary: flags
// take precedence over environment variables, which take precedence
// over spec.md §6's defaults. Adapted from wmap's
// internal/config/config.go Load() shape, producing a
// domain.Config instead of wmap's capture/GRPC-oriented one.
package config

import (
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/piwardrive/paccore/internal/core/domain"
)

// Options bundles the demo-binary-only settings that sit alongside
// the domain.Config the engine consumes.
type Options struct {
	Domain       domain.Config
	OuiDBPath    string
	HTTPAddr     string
	ShardCount   int
	LocalNetsCSV string
}

// Load parses command-line flags and environment variables into
// Options. Flags override environment variables, which override
// defaults.
func Load() (Options, error) {
	d := domain.DefaultConfig()

	flowTTLS := getEnvFloat("PACCORE_FLOW_TTL_S", d.FlowTTL.Seconds())
	windowS := getEnvFloat("PACCORE_DETECTION_WINDOW_S", d.DetectionWindow.Seconds())
	ppsThreshold := getEnvFloat("PACCORE_PACKET_RATE_THRESHOLD_PPS", d.PacketRateThresholdPPS)
	bpsThreshold := getEnvFloat("PACCORE_BYTE_RATE_THRESHOLD_BPS", d.ByteRateThresholdBPS)
	unknownRatio := getEnvFloat("PACCORE_UNKNOWN_PROTOCOL_RATIO_THRESHOLD", d.UnknownProtocolRatioThreshold)
	bufCap := int(getEnvFloat("PACCORE_ROLLING_BUFFER_CAPACITY", float64(d.RollingBufferCapacity)))
	timeWaitFactor := int(getEnvFloat("PACCORE_TCP_TIMEWAIT_FACTOR", float64(d.TCPTimeWaitFactor)))
	ouiPath := getEnv("PACCORE_OUI_DB", "")
	httpAddr := getEnv("PACCORE_ADDR", ":8080")
	localNetsCSV := getEnv("PACCORE_LOCAL_NETS", "")
	shardCount := int(getEnvFloat("PACCORE_SHARDS", 1))
	radiotapMode := getEnv("PACCORE_ASSUME_RADIOTAP", "auto")

	flag.Float64Var(&flowTTLS, "flow-ttl-s", flowTTLS, "flow eviction TTL in seconds")
	flag.Float64Var(&windowS, "detection-window-s", windowS, "anomaly detection window in seconds")
	flag.Float64Var(&ppsThreshold, "packet-rate-threshold-pps", ppsThreshold, "rate-anomaly packets/sec threshold")
	flag.Float64Var(&bpsThreshold, "byte-rate-threshold-bps", bpsThreshold, "reserved byte-rate threshold")
	flag.Float64Var(&unknownRatio, "unknown-protocol-ratio-threshold", unknownRatio, "unknown-protocol mix threshold")
	flag.IntVar(&bufCap, "rolling-buffer-capacity", bufCap, "rolling packet buffer capacity")
	flag.IntVar(&timeWaitFactor, "tcp-timewait-factor", timeWaitFactor, "TCP TIME_WAIT eviction multiple of flow-ttl")
	flag.StringVar(&ouiPath, "oui-db", ouiPath, "path to a SQLite OUI vendor database (empty disables vendor lookup)")
	flag.StringVar(&httpAddr, "addr", httpAddr, "debug HTTP server address")
	flag.StringVar(&localNetsCSV, "local-nets", localNetsCSV, "comma-separated CIDRs considered local, for Direction resolution")
	flag.IntVar(&shardCount, "shards", shardCount, "shard count stored in Options.ShardCount (paccore-sim itself always runs a single engine)")
	flag.StringVar(&radiotapMode, "assume-radiotap", radiotapMode, "auto|always|never")

	flag.Parse()

	localNets, err := parseLocalNets(localNetsCSV)
	if err != nil {
		return Options{}, err
	}

	dc := domain.Config{
		FlowTTL:                       time.Duration(flowTTLS * float64(time.Second)),
		DetectionWindow:               time.Duration(windowS * float64(time.Second)),
		PacketRateThresholdPPS:        ppsThreshold,
		ByteRateThresholdBPS:          bpsThreshold,
		UnknownProtocolRatioThreshold: unknownRatio,
		RollingBufferCapacity:         bufCap,
		TCPTimeWaitFactor:             timeWaitFactor,
		LocalNets:                     localNets,
		AssumeRadiotap:                parseRadiotapMode(radiotapMode),
	}
	if err := dc.Validate(); err != nil {
		return Options{}, err
	}

	return Options{
		Domain:       dc,
		OuiDBPath:    ouiPath,
		HTTPAddr:     httpAddr,
		ShardCount:   shardCount,
		LocalNetsCSV: localNetsCSV,
	}, nil
}

func parseLocalNets(csv string) ([]net.IPNet, error) {
	if csv == "" {
		return nil, nil
	}
	var nets []net.IPNet
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(part)
		if err != nil {
			return nil, err
		}
		nets = append(nets, *ipNet)
	}
	return nets, nil
}

func parseRadiotapMode(s string) domain.RadiotapMode {
	switch strings.ToLower(s) {
	case "always":
		return domain.RadiotapAlways
	case "never":
		return domain.RadiotapNever
	default:
		return domain.RadiotapAuto
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
