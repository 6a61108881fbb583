package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"buck/config"
	"buck/logger"
	"buck/server"

	"github.com/spf13/cobra"
)

var spawnTimeout time.Duration

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Show the player",
	Long:  `Asks the running daemon to show the player screen, starting the daemon first when none is running.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendRemote("ui")
	},
}

var selectCmd = &cobra.Command{
	Use:   "select [track]",
	Short: "Show the track selector",
	Long: `Asks the running daemon to show the numeric track selector. An optional
1-based track number is passed along; the track itself is picked on screen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := "select"
		if len(args) == 1 {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("track must be a number: %q", args[0])
			}
			payload += " " + args[0]
		}
		return sendRemote(payload)
	},
}

func init() {
	for _, c := range []*cobra.Command{uiCmd, selectCmd} {
		c.Flags().DurationVar(&spawnTimeout, "wait", 30*time.Second, "how long to wait for a freshly started daemon")
		rootCmd.AddCommand(c)
	}
}

func sendRemote(payload string) error {
	cfg := config.Load()
	initLogging(cfg, true)
	defer logger.Sync()

	logger.Info("sending remote command",
		logger.Component("cli"),
		logger.String("payload", payload),
		logger.String("socket", cfg.SocketPath))

	return server.SendOrSpawn(context.Background(), cfg.SocketPath, payload, spawnDaemon, spawnTimeout)
}

// spawnDaemon starts this executable without arguments, which runs the daemon.
func spawnDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(exe)
	if err := c.Start(); err != nil {
		return err
	}
	logger.Info("daemon spawned",
		logger.Component("cli"),
		logger.Int("pid", c.Process.Pid))
	return c.Process.Release()
}
