// Command corenode runs a single-process devnet of the DAG consensus core:
// a fixed committee of harvesters (this process's own genesis.DevAccounts,
// standing in for a real multi-process network the way the teacher's
// cmd/thor/solo package stands in for a real p2p network) running its own
// DKG session, mining proposal and convergence blocks on a fixed interval,
// and exposing Prometheus metrics over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/dagchain/corenode/muxdb"
	"github.com/dagchain/corenode/muxdb/engine"
	"github.com/dagchain/corenode/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Crit("corenode: load config", "err", err)
		os.Exit(1)
	}

	initTelemetry(cfg)

	node, err := NewNode(cfg)
	if err != nil {
		log.Crit("corenode: initialize node", "err", err)
		os.Exit(1)
	}
	defer node.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("corenode: starting", "committee_size", cfg.CommitteeSize, "threshold", cfg.Threshold, "block_interval", cfg.BlockInterval)
	node.Run(ctx)
}

// openMuxDB opens an in-memory store when cfg.DataDir is empty (local
// experimentation), or a leveldb-backed one at that path otherwise.
func openMuxDB(cfg Config) (*muxdb.MuxDB, error) {
	if cfg.DataDir == "" {
		db, err := muxdb.NewMem()
		if err != nil {
			return nil, errors.Wrap(err, "corenode: open in-memory store")
		}
		return db, nil
	}
	ldb, err := leveldb.OpenFile(cfg.DataDir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "corenode: open leveldb store")
	}
	return muxdb.New(engine.NewLevelEngine(ldb)), nil
}

// newMetricsServeMux exposes the telemetry handler the way the teacher's
// cmd/thor wires a Prometheus /metrics endpoint alongside the node's API.
func newMetricsServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	if h := telemetry.Handler(); h != nil {
		mux.Handle("/metrics", h)
	}
	return mux
}

func serveMetrics(addr string, handler http.Handler) error {
	return http.ListenAndServe(addr, handler)
}
