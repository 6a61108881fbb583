package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"buck/config"
	"buck/core/catalog"
	"buck/core/player"
	"buck/core/pointer"
	"buck/core/render"
	"buck/core/ui"
	"buck/logger"
	"buck/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var rootCmd = &cobra.Command{
	Use:   "buck",
	Short: "buck is a touchscreen music player for e-ink readers.",
	Long: `Runs the player daemon: catalogs the music directories, keeps one mplayer
process for the current track and draws the player when asked to over the
control socket (see "buck ui" and "buck select").`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging(cfg *config.Config, quiet bool) {
	logger.InitLogger(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    5,
		MaxBackups: 2,
		MaxAge:     30,
		Quiet:      quiet,
	})
}

func runDaemon() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	initLogging(cfg, false)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := render.NewFBInk(cfg.FBInkPath, cfg.AssetsDir, nil)
	status := func(line int, text string) { _ = sink.Status(line, text) }

	status(1, "* Cataloging...")
	cat, err := catalog.Load(cfg.MusicDirs, cfg.Extensions)
	if err != nil {
		status(2, "* No music found in "+fmt.Sprint(cfg.MusicDirs))
		logger.Error("catalog unavailable", logger.Component("main"), logger.ErrorField(err))
		return err
	}

	listener, err := server.Listen(cfg.SocketPath)
	if err != nil {
		status(2, "* Cannot open the control socket")
		logger.Error("control socket unavailable", logger.Component("main"), logger.ErrorField(err))
		return err
	}
	defer listener.Close()

	panel, err := pointer.OpenPanel(cfg.PointerDevice, pointer.Geometry{
		AxisMaxX: cfg.AxisMaxX,
		AxisMaxY: cfg.AxisMaxY,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Swap:     cfg.SwapAxes,
	})
	if err != nil {
		status(2, "* Cannot open the touch panel")
		logger.Error("pointer device unavailable", logger.Component("main"), logger.ErrorField(err))
		return err
	}
	defer panel.Close()

	opts := player.Options{
		Volume:       cfg.Volume,
		ReadyMarker:  cfg.ReadyMarker,
		SpawnRetry:   cfg.SpawnRetry,
		QueryTimeout: cfg.QueryTimeout,
		Status:       status,
	}
	if cfg.BTKeepalive {
		opts.Keepalive = player.NewBluetoothKeepalive(cfg.BluetoothctlPath)
	}
	actor, err := player.NewActor(cat, player.NewMPlayer(cfg.PlayerPath), opts)
	if err != nil {
		return err
	}

	layout := ui.NewLayout(cfg.Width, cfg.Height, cfg.Scale, nil)
	if cfg.DisableSeek {
		layout.DisableSeek()
	}
	coord := ui.New(panel, actor, listener, ui.Options{
		Layout:      layout,
		Sink:        sink,
		Catalog:     cat,
		AssetsDir:   cfg.AssetsDir,
		ArtworkPath: cfg.ArtworkPath,
		VolumeFont:  cfg.Asset("LinLibertine_M.otf"),
	})

	logger.Info("buck started",
		logger.Component("main"),
		logger.Int("tracks", cat.Len()),
		logger.String("socket", cfg.SocketPath))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return actor.Run(gctx) })
	g.Go(func() error { return coord.Run(gctx) })

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("shutting down", logger.Component("main"))
		return nil
	}
	return err
}
