package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/guarzo/resalepricer/internal/api"
	"github.com/guarzo/resalepricer/internal/config"
	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/report"
	"github.com/guarzo/resalepricer/internal/watch"
)

const usage = `Usage: resalepricer <command> [flags]

Commands:
  serve     run the HTTP API
  analyze   analyze one item and print the result
  watch     re-analyze WATCH_KEYWORDS on WATCH_SCHEDULE
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, cfg, logger, os.Args[2:])
	case "analyze":
		err = runAnalyze(ctx, cfg, logger, os.Args[2:], os.Stdout)
	case "watch":
		err = runWatch(ctx, cfg, logger, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", cfg.Port, "listen port")
	timeout := fs.Duration("timeout", api.DefaultTimeout, "per-request analysis timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	service, coordinator := buildService(cfg, logger)
	handler := api.NewAPIHandler(service, *timeout, logger)
	srv := handler.NewServer(":" + strconv.Itoa(*port))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", *port),
			slog.String("sources", strings.Join(coordinator.Sources(), ",")))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	brand := fs.String("brand", "", "brand name")
	condition := fs.String("condition", "", "item condition")
	category := fs.String("category", "", "item category")
	format := fs.String("format", "json", "output format: json or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *format {
	case "json", "csv":
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	req := model.AnalysisRequest{
		Keywords:  strings.Join(fs.Args(), " "),
		Brand:     *brand,
		Condition: *condition,
		Category:  *category,
	}

	service, _ := buildService(cfg, logger)
	result, err := service.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if *format == "csv" {
		return report.WriteAnalysisCSV(out, req.Keywords, result)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	schedule := fs.String("schedule", cfg.Watch.Schedule, "cron schedule")
	once := fs.Bool("once", false, "run the watch list once and exit")
	quiet := fs.Bool("quiet", false, "hide the progress bar in -once mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	keywords := cfg.Watch.Keywords
	if fs.NArg() > 0 {
		keywords = fs.Args()
	}

	service, _ := buildService(cfg, logger)
	w, err := watch.New(*schedule, keywords, service, logger)
	if err != nil {
		return err
	}

	if *once {
		if !*quiet {
			w.SetProgressWriter(os.Stderr)
		}
		w.RunOnce(ctx)
		return nil
	}

	w.Start()
	<-ctx.Done()
	logger.Info("stopping watch")
	<-w.Stop().Done()
	return nil
}
