// Command ftsindexd wires the full-text index augmentation's
// components together into a runnable process: it opens the Index
// Store and the backing triple store named by its flags, builds a
// Synchroniser over both, and serves Prometheus metrics until it
// receives a shutdown signal. Ported from linksrus/textindexer/main.go.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/config"
	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/memtriple"
	"github.com/foliotext/tripleindex/storetriple/pg"
	"github.com/foliotext/tripleindex/syncer"
	"github.com/foliotext/tripleindex/triple"
)

var (
	appName = "ftsindexd"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "lucenedir",
			EnvVar: "FTSINDEXD_LUCENEDIR",
			Usage:  "On-disk directory the full-text index is persisted under (mutually exclusive with useramdir)",
		},
		cli.BoolFlag{
			Name:   "useramdir",
			EnvVar: "FTSINDEXD_USERAMDIR",
			Usage:  "Use an in-memory index instead of an on-disk one",
		},
		cli.StringFlag{
			Name:   "analyzer",
			EnvVar: "FTSINDEXD_ANALYZER",
			Usage:  "bleve text analyzer used to tokenize property and text fields",
		},
		cli.BoolFlag{
			Name:   "incompletequeryfail",
			EnvVar: "FTSINDEXD_INCOMPLETEQUERYFAIL",
			Usage:  "Fail a query outright on an incomplete reserved-vocabulary pattern group instead of skipping it",
		},
		cli.StringFlag{
			Name:   "triplestore-dsn",
			EnvVar: "FTSINDEXD_TRIPLESTORE_DSN",
			Usage:  "postgres connection string for the backing triple store; empty uses an in-memory store",
		},
		cli.IntFlag{
			Name:   "metrics-port",
			Value:  8080,
			EnvVar: "METRICS_PORT",
			Usage:  "The port for exposing Prometheus metrics",
		},
		cli.IntFlag{
			Name:   "pprof-port",
			Value:  6060,
			EnvVar: "PPROF_PORT",
			Usage:  "The port for exposing pprof endpoints",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	cfg, err := config.FromFlags(
		appCtx.String("lucenedir"),
		appCtx.Bool("useramdir"),
		appCtx.String("analyzer"),
		appCtx.Bool("incompletequeryfail"),
	)
	if err != nil {
		return err
	}

	store, err := index.Open(cfg.IndexOptions(logger))
	if err != nil {
		return xerrors.Errorf("opening index store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("closing index store")
		}
	}()
	store.SetCommitLatencyObserver(promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "ftsindexd_commit_latency_seconds",
		Help: "Time spent committing a batch of index mutations",
	}))

	triples, closeTriples, err := getTripleStore(appCtx.String("triplestore-dsn"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTriples(); err != nil {
			logger.WithError(err).Error("closing triple store")
		}
	}()

	synchroniser := &syncer.Synchroniser{
		Store:   store,
		Triples: triples,
		Log:     logger,
	}
	_ = synchroniser // ready for an embedding caller to drive with a transaction log

	var wg sync.WaitGroup
	_, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	metricsListener, err := net.Listen("tcp", fmt.Sprintf(":%d", appCtx.Int("metrics-port")))
	if err != nil {
		return err
	}
	defer func() { _ = metricsListener.Close() }()

	wg.Add(1)
	go func() {
		defer wg.Done()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.WithField("port", appCtx.Int("metrics-port")).Info("serving prometheus metrics")
		_ = http.Serve(metricsListener, mux)
	}()

	pprofListener, err := net.Listen("tcp", fmt.Sprintf(":%d", appCtx.Int("pprof-port")))
	if err != nil {
		return err
	}
	defer func() { _ = pprofListener.Close() }()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.WithField("port", appCtx.Int("pprof-port")).Info("listening for pprof requests")
		srv := new(http.Server)
		_ = srv.Serve(pprofListener)
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		s := <-sigCh
		logger.WithField("signal", s.String()).Info("shutting down due to signal")
		_ = metricsListener.Close()
		_ = pprofListener.Close()
		cancelFn()
	}()

	wg.Wait()
	return nil
}

func getTripleStore(dsn string) (triple.Store, func() error, error) {
	if dsn == "" {
		logger.Info("using in-memory triple store")
		return memtriple.New(), func() error { return nil }, nil
	}
	logger.Info("using postgres-backed triple store")
	s, err := pg.Open(dsn)
	if err != nil {
		return nil, nil, xerrors.Errorf("opening postgres triple store: %w", err)
	}
	return s, s.Close, nil
}
