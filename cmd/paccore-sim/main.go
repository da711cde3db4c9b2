// Command paccore-sim is a demo/bench binary: it wires Config, an OUI
// database, the Analysis Engine, a Prometheus /metrics endpoint, and a
// small debug HTTP surface, then feeds the engine a synthetic traffic
// generator (packet capture itself is out of scope — spec.md §1).
//
// Structured logging, signal-driven graceful shutdown, and the
// goroutine-per-concern pump are adapted from wmap's cmd/wmap/main.go.
package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/piwardrive/paccore/internal/adapters/metrics"
	"github.com/piwardrive/paccore/internal/adapters/oui"
	"github.com/piwardrive/paccore/internal/config"
	"github.com/piwardrive/paccore/internal/core/domain"
	"github.com/piwardrive/paccore/internal/core/ports"
	"github.com/piwardrive/paccore/internal/core/services/engine"
	"github.com/piwardrive/paccore/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("paccore-sim starting")

	opts, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	var db ports.OuiDB = oui.NewMemoryDB(nil)
	if opts.OuiDBPath != "" {
		sqliteDB, err := oui.OpenSQLite(opts.OuiDBPath)
		if err != nil {
			slog.Warn("OUI database init failed, using empty fallback", "error", err)
		} else {
			defer sqliteDB.Close()
			db = sqliteDB
		}
	}

	eng, err := engine.New(opts.Domain, db)
	if err != nil {
		slog.Error("failed to construct engine", "error", err)
		os.Exit(1)
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/snapshot", handleSnapshot(eng)).Methods(http.MethodGet)
	router.HandleFunc("/flows", handleFlows(eng)).Methods(http.MethodGet)
	router.HandleFunc("/summary", handleSummary(eng)).Methods(http.MethodGet)

	server := &http.Server{Addr: opts.HTTPAddr, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("debug HTTP server listening", "addr", opts.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go runTickLoop(ctx, eng, opts.Domain.DetectionWindow)
	go runTrafficGenerator(ctx, eng)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errChan:
		slog.Error("fatal server error", "error", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
	slog.Info("paccore-sim stopped")
}

func runTickLoop(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			eng.Tick(now)
			metrics.TopologyNodes.Set(float64(eng.Snapshot().Stats.NodeCount))
			metrics.ActiveFlows.Set(float64(len(eng.TopFlows(0))))
		}
	}
}

// runTrafficGenerator synthesizes a stream of Ethernet/IPv4/TCP and
// UDP frames so the demo binary has something to analyze without a
// real capture source (spec.md §1 scopes capture out of the core).
func runTrafficGenerator(ctx context.Context, eng *engine.Engine) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	peers := [][2][4]byte{
		{{192, 168, 0, 1}, {192, 168, 0, 2}},
		{{192, 168, 0, 1}, {8, 8, 8, 8}},
		{{10, 0, 0, 5}, {10, 0, 0, 6}},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			peer := peers[rand.Intn(len(peers))]
			frame := syntheticFrame(peer[0], peer[1])
			report := eng.Analyze(ctx, frame, uint64(time.Now().UnixMicro()))
			metrics.ObserveReport(report.Decoded.Protocol, report.ParseError, anomalyKinds(report))
		}
	}
}

func anomalyKinds(report domain.Report) []string {
	kinds := make([]string, len(report.Anomalies))
	for i, a := range report.Anomalies {
		kinds[i] = string(a.Kind)
	}
	return kinds
}

func syntheticFrame(src, dst [4]byte) []byte {
	udp := rand.Intn(2) == 0
	b := make([]byte, 14+20+20)
	copy(b[0:6], []byte{0x00, 0x11, 0x22, 0x33, 0x44, byte(rand.Intn(256))})
	copy(b[6:12], []byte{0x00, 0x66, 0x77, 0x88, 0x99, byte(rand.Intn(256))})
	b[12], b[13] = 0x08, 0x00 // IPv4

	ip := b[14:34]
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], 40) // total length: 20 header + 20 transport
	if udp {
		ip[9] = 17
	} else {
		ip[9] = 6
	}
	copy(ip[12:16], src[:])
	copy(ip[16:20], dst[:])

	transport := b[34:54]
	if udp {
		transport[0], transport[1] = 0, 53
		transport[2], transport[3] = 0, 53
		transport[4], transport[5] = 0, 20 // UDP length: 8 header + 12 payload
	} else {
		transport[0], transport[1] = 0x1F, 0x90
		transport[2], transport[3] = 0, 80
		transport[12] = 5 << 4
		transport[13] = 0x02
	}

	return b
}

func handleSnapshot(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, eng.Snapshot())
	}
}

func handleFlows(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, eng.TopFlows(20))
	}
}

func handleSummary(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, eng.Summary())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
