// Command lottery runs the scheduler demos and prints what the lottery did.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/viant/lottery"
)

var (
	app = kingpin.New("lottery", "Proportional-share lottery scheduler demos.")

	configURL   = app.Flag("config", "Configuration URL (file path, mem://, s3://...).").Short('c').String()
	cpus        = app.Flag("cpus", "Number of CPUs, overrides the configuration.").Int()
	seed        = app.Flag("seed", "Lottery seed, overrides the configuration.").Int64()
	verbose     = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
	metricsAddr = app.Flag("metrics", "Serve prometheus metrics on this address while running.").String()
	timeout     = app.Flag("timeout", "Abort a demo after this long.").Default("2m").Duration()
)

type commandHandler func(ctx context.Context, command string) bool

var commandHandlers []commandHandler

func main() {
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	for _, handler := range commandHandlers {
		if handler(ctx, command) {
			break
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, mux)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("metrics server stopped")
	}
}

func loadConfig(ctx context.Context) *lottery.Config {
	config := lottery.DefaultConfig()
	if *configURL != "" {
		var err error
		config, err = lottery.LoadConfig(ctx, *configURL)
		kingpin.FatalIfError(err, "Unable to load config")
	}
	if *cpus > 0 {
		config.Processor.CPUs = *cpus
	}
	if *seed != 0 {
		config.Lottery.Seed = *seed
	}
	if *verbose {
		config.Log.Level = "debug"
	}
	kingpin.FatalIfError(config.Validate(), "Invalid config")
	return config
}

// startRuntime starts a runtime printing user output to stdout; the
// returned function shuts it down
func startRuntime(ctx context.Context) (*lottery.Runtime, func()) {
	srv := lottery.New(lottery.WithConfig(loadConfig(ctx)), lottery.WithConsole(os.Stdout))
	rt := srv.Runtime()
	kingpin.FatalIfError(rt.Start(ctx), "Unable to start runtime")
	return rt, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("shutdown")
		}
	}
}
