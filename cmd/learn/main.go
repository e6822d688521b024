package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drakos74/free-learn/infra/config"
	"github.com/drakos74/free-learn/internal/metrics"
	"github.com/drakos74/free-learn/internal/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	opts := options{}
	flag.StringVar(&opts.data, "data", "", "dataset path stem, '<stem>.dfn' and '<stem>.dat' are read")
	flag.StringVar(&opts.learner, "learner", "backprop", "learner to train: backprop|kohonen|tree")
	flag.IntVar(&opts.passes, "passes", 0, "number of training passes, 0 uses the configured default")
	flag.IntVar(&opts.hidden, "hidden", 0, "hidden units of the backprop network, 0 uses the number of inputs")
	flag.IntVar(&opts.rows, "rows", 0, "rows of the kohonen grid, 0 uses the configured default")
	flag.IntVar(&opts.cols, "cols", 0, "columns of the kohonen grid, 0 uses the configured default")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the clock")
	flag.StringVar(&opts.config, "config", "", "config key under the config dir, e.g. 'learn'")
	flag.StringVar(&config.Dir, "config-dir", config.Dir, "config dir")
	flag.StringVar(&opts.storage, "storage", "", "root dir for saved models and run journals, nothing is persisted when empty unless -save or -restore is set")
	flag.BoolVar(&opts.save, "save", false, "save the trained model")
	flag.BoolVar(&opts.restore, "restore", false, "restore the saved model instead of training")
	flag.Float64Var(&opts.target, "target", 0, "stop once the pass error is at or below it, 0 trains all passes")
	flag.Float64Var(&opts.plateau, "plateau", 0, "stop once the recent pass errors vary less than it, 0 disables it")
	flag.DurationVar(&opts.yield, "yield", 0, "pause between passes, e.g. '5ms'")
	flag.StringVar(&opts.metrics, "metrics", "", "address to serve prometheus metrics and run status on, e.g. ':6021'")
	debug := flag.Bool("debug", false, "log the engine trace")
	flag.BoolVar(&opts.quiet, "quiet", false, "do not print the engine trace")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		flag.Usage()
		os.Exit(usageCode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metrics != "" {
		go func() {
			if err := status(opts.metrics).Run(ctx); err != nil {
				log.Error().Err(err).Str("addr", opts.metrics).Msg("could not serve metrics")
			}
		}()
	}

	var out io.Writer = os.Stdout
	if opts.quiet {
		out = nil
	}
	if err := run(ctx, opts, out); err != nil {
		log.Error().Err(err).Str("data", opts.data).Str("learner", opts.learner).Msg("failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// status exposes the prometheus collectors and the last pass error of every run.
func status(addr string) *server.Server {
	return server.NewServer("learn", addr).
		Handle("/metrics", promhttp.Handler()).
		Add(server.Live()).
		AddRoute(server.GET, server.Api, "errors", func(r *http.Request) ([]byte, int, error) {
			return server.Json(metrics.Observer.All())
		})
}
