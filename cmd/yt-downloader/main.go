package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Raman-79/yt-downloader/pkg/config"
	"github.com/Raman-79/yt-downloader/pkg/logger"
)

var version = "dev"

// app carries the configuration shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
}

func main() {
	if err := newRootCommand(&app{v: config.NewViper()}).Execute(); err != nil {
		slog.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "yt-downloader",
		Short:         "Download YouTube media with yt-dlp and serve it from an S3 cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./yt-downloader.yaml or $HOME/yt-downloader.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("log-source", false, "include source locations in logs")
	flags.String("ytdlp", config.DefaultBinaryPath, "path to the yt-dlp executable")
	flags.String("ffmpeg", config.DefaultFFmpegPath, "path to the ffmpeg executable")
	flags.String("out", config.DefaultOutputDir, "directory for temporary artifacts")
	a.bind(flags.Lookup("log-level"), "log.level")
	a.bind(flags.Lookup("log-format"), "log.format")
	a.bind(flags.Lookup("log-source"), "log.source")
	a.bind(flags.Lookup("ytdlp"), "download.binary_path")
	a.bind(flags.Lookup("ffmpeg"), "download.ffmpeg_path")
	a.bind(flags.Lookup("out"), "download.output_dir")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newFetchCommand(a))
	root.AddCommand(newVersionCommand())
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.Source)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "yt-downloader", version)
		},
	}
}
