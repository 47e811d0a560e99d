package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"formatlink/pkg/config"
	"formatlink/pkg/logger"
	"formatlink/pkg/offscreen"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [origin]",
	Short: "Run as a browser native messaging host",
	Long: `Read length-prefixed JSON messages on stdin and answer on stdout, as
browsers expect from a native messaging host. The browser passes the caller
origin as the first argument. Logs go to stderr.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if len(args) > 0 {
			logger.Info().Str("origin", args[0]).Msg("native messaging host started")
		}
		// stdin carries the messages, so content prompts cannot be answered here.
		router := a.newRouter(nil, a.cfg.Notify)
		return router.Serve(ctx, os.Stdin, os.Stdout)
	},
}

var offscreenServeCmd = &cobra.Command{
	Use:    offscreen.Command,
	Hidden: true,
	Short:  "Internal: run one offscreen copy (do not call directly)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := GetContext()
		defer cancel()
		return offscreen.Serve(ctx, os.Stdin, os.Stdout, offscreen.ClipHandler(newPlatform(config.ClipboardAuto)))
	},
}
