package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/notefs/config"
	"github.com/brettbedarf/notefs/internal/util"
	"github.com/brettbedarf/notefs/seed"
	"github.com/brettbedarf/notefs/server"
	"github.com/brettbedarf/notefs/snapshot"
	"github.com/brettbedarf/notefs/workspace"
)

// effectiveLogLevel resolves verbosity precedence: an explicit -verbose
// flag wins over a config file value, which wins over the default.
func effectiveLogLevel(flagSet bool, flagLvl, cfgLvl util.LogLevel) util.LogLevel {
	if flagSet {
		return flagLvl
	}
	return cfgLvl
}

func main() {
	// Parse command line arguments
	var (
		configPath string
		dataFile   string
		seedDir    string
		addr       string
		verbose    int
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&dataFile, "data", "", "Path to the snapshot file. Overrides the config file value.")
	flag.StringVar(&dataFile, "d", "", "--data (shorthand)")
	flag.StringVar(&seedDir, "seed", "", "Directory of seed markdown documents. Overrides the config file value.")
	flag.StringVar(&seedDir, "s", "", "--seed (shorthand)")
	flag.StringVar(&addr, "addr", "", "Listen address for the API server. Overrides the config file value.")
	flag.StringVar(&addr, "a", "", "--addr (shorthand)")
	flag.IntVar(&verbose, "verbose", 3, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 3, "--verbose (shorthand)")
	flag.Parse()

	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	flagLvl := logLvls[verbose-1]
	verboseSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbose" || f.Name == "v" {
			verboseSet = true
		}
	})

	// Resolve config: file overrides on defaults, then flags on top
	cfg := config.NewDefaultConfig()
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			util.InitializeLogger(flagLvl)
			logger := util.GetLogger("main")
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
	}
	cfg.LogLvl = effectiveLogLevel(verboseSet, flagLvl, cfg.LogLvl)
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if seedDir != "" {
		cfg.SeedDir = seedDir
	}
	if addr != "" {
		cfg.Addr = addr
	}

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Info().
		Str("data", cfg.DataFile).
		Str("seed", cfg.SeedDir).
		Str("addr", cfg.Addr).
		Msg("Workspace initializing")

	// Reconcile the persisted snapshot with the seed documents
	seedNodes := seed.Load(cfg.SeedDir)
	rec := snapshot.NewReconciler(snapshot.NewFileStore(cfg.DataFile))
	nodes, activeID := rec.Restore(seedNodes)

	ws := workspace.New(nodes, activeID)
	rec.Attach(ws)
	logger.Info().Int("nodes", ws.Len()).Str("active", ws.ActiveID()).Msg("Workspace ready")

	srv := &http.Server{
		Addr:     cfg.Addr,
		Handler:  server.New(ws, nil).Handler(),
		ErrorLog: util.NewLogLogger("http", util.ErrorLevel),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()
	logger.Info().Str("addr", cfg.Addr).Msg("Workspace API listening")

	// Wait for termination signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down cleanly")
	} else {
		logger.Info().Msg("Server stopped")
	}
}
