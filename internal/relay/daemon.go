// Daemon for continuous tailing of watched files, classification of emitted lines, and ordered delivery of records to the remote store
package relay

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tailpost/internal/atomics"
	"tailpost/internal/classify"
	"tailpost/internal/externalio/beats"
	"tailpost/internal/externalio/server"
	"tailpost/internal/externalio/store"
	"tailpost/internal/global"
	"tailpost/internal/identity"
	"tailpost/internal/lifecycle"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/internal/relay/managers/delivery"
	"tailpost/internal/relay/managers/ingest"
	"tailpost/internal/relay/managers/mux"
	"tailpost/internal/relay/metrics"
	"tailpost/internal/relay/scaling"
	"tailpost/pkg/record"
	"time"
)

// Create new relay daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	return
}

// Brings the pipeline up sink first so no stage ever feeds a missing
// downstream. A failure mid-startup tears down whatever already runs.
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// Daemon lifetime belongs to Shutdown, only the logger crosses over
	// from the caller's context
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = context.WithValue(daemon.ctx, global.LoggerKey, logctx.GetLogger(globalCtx))

	// Everything below logs under the relay namespace
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRelay)
	defer func() { daemon.ctx = logctx.RemoveLastCtxTag(daemon.ctx) }()

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	// Remote store is required before anything can spin up
	if daemon.cfg.StoreURL == "" {
		err = fmt.Errorf("cannot start without a store URL")
		return
	}

	// Config gaps and process facts resolve before any stage builds
	daemon.cfg.setDefaults()

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %v", err)
		return
	}
	global.PID = os.Getpid()

	watchSpecs, err := classify.ParsePathSpecs(daemon.cfg.SourcePaths)
	if err != nil {
		err = fmt.Errorf("invalid watch paths: %v", err)
		return
	}

	// Every delivered record carries the identity embedded in the credential
	who, err := identity.FromToken(daemon.cfg.Token)
	if err != nil {
		err = fmt.Errorf("failed to resolve delivery identity: %v", err)
		return
	}

	sink, err := store.New(daemon.cfg.StoreURL, daemon.cfg.Token)
	if err != nil {
		err = fmt.Errorf("failed to create store client: %v", err)
		return
	}

	var mirror *beats.OutModule
	if daemon.cfg.BeatsEnabled {
		mirror, err = beats.NewOutput(daemon.cfg.BeatsAddress)
		if err != nil {
			err = fmt.Errorf("failed to connect beats mirror: %v", err)
			return
		}
	}

	daemon.fatalCh = make(chan error, 1)

	// Stage 3 - Delivery Manager
	daemon.Mgrs.Delivery, err = delivery.NewInstanceManager(daemon.ctx,
		daemon.cfg.MinDeliveryQueueSize,
		sink,
		mirror,
		daemon.cfg.StoreTable,
		daemon.cfg.RetryLimit,
		daemon.cfg.RetryInterval,
		daemon.fatalCh,
		daemon.cfg.MinDeliveryQueueSize,
		daemon.cfg.MaxDeliveryQueueSize)
	if err != nil {
		err = fmt.Errorf("error creating new delivery instance manager: %v", err)
		return
	}

	// Stage 2 - Stream Multiplexer
	daemon.Mgrs.Mux, err = mux.NewInstanceManager(daemon.ctx,
		daemon.cfg.MinStreamQueueSize,
		daemon.Mgrs.Delivery.InQueue,
		who,
		daemon.cfg.MinStreamQueueSize,
		daemon.cfg.MaxStreamQueueSize)
	if err != nil {
		err = fmt.Errorf("error creating new mux instance manager: %v", err)
		return
	}
	daemon.Mgrs.Mux.StartForwarders()

	// Stage 1 - Readers
	daemon.Mgrs.In = ingest.NewInstanceManager(daemon.ctx, daemon.Mgrs.Mux.StdoutQueue, daemon.Mgrs.Mux.StderrQueue)
	err = daemon.Mgrs.In.InitialScan(watchSpecs, os.Stdin)
	if err != nil {
		err = fmt.Errorf("failed initial watch target scan: %v", err)
		daemon.Shutdown()
		return
	}

	// Delivery starts only after every watch target finished its initial
	// scan, lines observed before this point wait in the inbox
	daemon.Mgrs.Delivery.StartWorker()

	// Late appearing watch targets
	discoveryCtx, cancelDiscovery := context.WithCancel(daemon.ctx)
	daemon.cancelDiscovery = cancelDiscovery
	daemon.discoveryDone = make(chan struct{})
	go func() {
		defer close(daemon.discoveryDone)
		daemon.Mgrs.In.WatchForNew(discoveryCtx, daemon.cfg.DiscoveryRescanInterval)
	}()

	// Gatherer cutting periodic metric slices
	daemon.metricsCollector = metrics.New(daemon.Mgrs.In,
		daemon.Mgrs.Mux,
		daemon.Mgrs.Delivery,
		daemon.cfg.MetricCollectionInterval,
		daemon.cfg.MetricMaxAge)
	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search
	daemon.MetricDiscoverer = daemon.metricsCollector.Registry.Discover
	daemon.MetricAggregator = daemon.metricsCollector.Registry.Aggregate

	// Queue autoscaler
	if daemon.cfg.AutoscaleEnabled {
		scaler := scaling.New(daemon.metricsCollector.Registry,
			daemon.cfg.AutoscaleCheckInterval,
			daemon.Mgrs)
		workerCtx := daemon.ctx
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			scaler.Run(workerCtx)
		}()
	}

	// Local metric query server
	if daemon.cfg.MetricQueryServerEnabled {
		// Server logs get their own lineage, appended on a copy so the
		// daemon tags stay untouched
		serverCtx := daemon.ctx
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		daemon.MetricServer, err = server.SetupListener(serverCtx, daemon.cfg.MetricQueryServerPort, daemon.MetricDataSearcher, daemon.MetricDiscoverer, daemon.MetricAggregator)
		if err != nil {
			err = fmt.Errorf("failed to setup metric query server: %v", err)
			daemon.Shutdown()
			return
		}
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, daemon.MetricServer)
		}()
	}

	// Exit signals get a graceful shutdown only once every component the
	// handler touches exists
	go signalHandler(daemon)

	notifyErr := lifecycle.NotifyReady(daemon.ctx)
	if notifyErr == nil {
		notifyErr = lifecycle.NotifyStatus(daemon.ctx, fmt.Sprintf("Delivering to table '%s'", daemon.cfg.StoreTable))
	}
	if notifyErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify failed: %v\n", notifyErr)
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Blocks until the daemon stops. Returns nil on a clean shutdown, the
// pipeline error when a record exhausted its delivery attempts.
func (daemon *Daemon) Run() (err error) {
	select {
	case <-daemon.ctx.Done():
	case err = <-daemon.fatalCh:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.ErrorLog,
			"Fatal pipeline error: %v\n", err)
		daemon.Shutdown()
	}
	return
}

// Drains and stops the pipeline source to sink: discovery first, then
// readers, forwarders, and last the delivery worker.
func (daemon *Daemon) Shutdown() {
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRelay)
	defer func() { daemon.ctx = logctx.RemoveLastCtxTag(daemon.ctx) }()

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	notifyErr := lifecycle.NotifyStopping(daemon.ctx)
	if notifyErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify failed: %v\n", notifyErr)
	}

	// Metric query surface goes down first
	if daemon.cfg.MetricQueryServerEnabled && daemon.MetricServer != nil {
		err := daemon.MetricServer.Shutdown(daemon.ctx)
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop discovery before readers so nothing attaches mid teardown
	if daemon.cancelDiscovery != nil {
		daemon.cancelDiscovery()
		<-daemon.discoveryDone
	}

	// Stop reader instances
	if daemon.Mgrs.In != nil {
		daemon.Mgrs.In.Mu.Lock()
		watchPaths := make([]string, 0, len(daemon.Mgrs.In.FileSources))
		for filePath := range daemon.Mgrs.In.FileSources {
			watchPaths = append(watchPaths, filePath)
		}
		daemon.Mgrs.In.Mu.Unlock()

		for _, filePath := range watchPaths {
			err := daemon.Mgrs.In.RemoveFileInstance(filePath)
			if err != nil {
				logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
					"reader shutdown failed: %v\n", err)
			}
		}
		if daemon.Mgrs.In.StdinSource != nil {
			daemon.Mgrs.In.RemoveStdinInstance()
		}
	}

	// Stop forwarders after the stream queues empty
	if daemon.Mgrs.Mux != nil {
		for _, streamQueue := range []*mpmc.Queue[record.Line]{daemon.Mgrs.Mux.StdoutQueue, daemon.Mgrs.Mux.StderrQueue} {
			queue := streamQueue.ActiveWrite.Load()
			success, last := atomics.WaitUntilZero(&queue.Metrics.Depth, global.RelayShutdownTimeout)
			if !success {
				logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
					"stream queue did not empty in time: dropped %d lines\n", last)
			}
		}
		daemon.Mgrs.Mux.StopForwarders()
	}

	// Stop the delivery worker after the inbox empties
	if daemon.Mgrs.Delivery != nil {
		queue := daemon.Mgrs.Delivery.InQueue.ActiveWrite.Load()
		success, last := atomics.WaitUntilZero(&queue.Metrics.Depth, global.RelayShutdownTimeout)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"delivery inbox did not empty in time: dropped %d records\n", last)
		}
		daemon.Mgrs.Delivery.StopWorker()
	}

	// Every stage is quiet, release the run loop
	daemon.cancel()

	// Bounded wait for straggler goroutines
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.RelayShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Timeout: relay daemon did not shutdown within %v seconds",
			global.RelayShutdownTimeout.Seconds())
		return
	}
}

// Signal dispatch: SIGHUP forces a watch target rescan, SIGINT and
// SIGTERM begin a graceful shutdown.
func signalHandler(daemon *Daemon) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan

		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Received signal: %v\n", sig)

		// Reload rechecks watch targets now instead of at the next tick
		if sig == syscall.SIGHUP {
			err := lifecycle.NotifyReload(daemon.ctx)
			if err != nil {
				logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
					"Systemd notify failed: %v\n", err)
			}

			daemon.Mgrs.In.Rescan()

			err = lifecycle.NotifyReady(daemon.ctx)
			if err != nil {
				logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
					"Systemd notify failed: %v\n", err)
			}
			continue
		}

		// Teardown here, Run unblocks once the daemon context closes
		daemon.Shutdown()
		return
	}
}
