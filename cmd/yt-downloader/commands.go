package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Raman-79/yt-downloader/pkg/api"
	"github.com/Raman-79/yt-downloader/pkg/downloader"
	"github.com/Raman-79/yt-downloader/pkg/gateway"
	"github.com/Raman-79/yt-downloader/pkg/models"
	"github.com/Raman-79/yt-downloader/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag.Name, err))
	}
}

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().Int("port", 8080, "port for the API server")
	cmd.Flags().Bool("onweb", false, "serve the web UI on /")
	a.bind(cmd.Flags().Lookup("port"), "server.port")
	a.bind(cmd.Flags().Lookup("onweb"), "server.web")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	svc, err := gateway.New(ctx, a.cfg, gateway.Options{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	srv, err := api.NewServer(slog.Default(), svc, api.Options{
		Addr:        ":" + strconv.Itoa(a.cfg.Server.Port),
		Web:         a.cfg.Server.Web,
		Gatherer:    prometheus.DefaultGatherer,
		MaxFileSize: a.cfg.Download.MaxFileSize,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	slog.Info("Listening", "url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port), "web_ui", a.cfg.Server.Web)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func newFetchCommand(a *app) *cobra.Command {
	var (
		id       string
		format   string
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download one video through the cache and print its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rawURL := args[0]
			if id == "" {
				id = utils.ExtractVideoID(rawURL)
			}

			opts := gateway.Options{Registerer: prometheus.NewRegistry()}
			var printer *downloader.ProgressPrinter
			if progress {
				label := "Video"
				if models.ParseFormat(format) == models.FormatAudio {
					label = "Audio"
				}
				printer = &downloader.ProgressPrinter{Out: cmd.ErrOrStderr(), Label: label, Interval: 200 * time.Millisecond}
				opts.Progress = printer
			}

			svc, err := gateway.New(ctx, a.cfg, opts)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			res, err := svc.Fetch(ctx, rawURL, format, id)
			if printer != nil {
				printer.Finish()
			}
			if err != nil {
				return err
			}

			slog.Info("Success", "key", res.Key, "cache_hit", res.CacheHit, "bytes", res.SizeBytes)
			fmt.Fprintln(cmd.OutOrStdout(), res.PresignedURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "file identifier used as the cache key (defaults to the video ID)")
	cmd.Flags().StringVar(&format, "format", string(models.FormatVideo), "video or audio")
	cmd.Flags().BoolVar(&progress, "dl-progress", false, "show console progress")
	return cmd
}
