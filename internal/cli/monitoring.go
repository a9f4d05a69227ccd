package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"market-alerts/internal/monitor"
	"market-alerts/internal/notify"
	"market-alerts/internal/stream"
)

// addMonitoringCommands adds the long-running engine commands.
func addMonitoringCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the alert engine with its HTTP API",
		Long: `Run the polling loop and serve the REST API and WebSocket stream.

Endpoints live under /api; connect to /api/ws for triggered alerts as they fire.`,
		Example: `  market-alerts serve
  market-alerts serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			e, err := app.buildEngine(ctx)
			if err != nil {
				return err
			}

			e.Hub.Start(ctx)
			defer e.Hub.Stop()
			e.Controller.Start(ctx)
			defer e.Controller.Stop()

			if addr == "" {
				addr = app.Config.Server.Addr
			}
			return e.Server(app).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		once   bool
		bell   bool
		prices bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor alerts from the terminal",
		Long: `Run the polling loop and print each triggered alert with its market context.

Press Ctrl+C to stop.`,
		Example: `  market-alerts watch
  market-alerts watch --once
  market-alerts watch --prices --bell`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			e, err := app.buildEngine(ctx)
			if err != nil {
				return err
			}

			if !output.IsJSON() {
				e.Notifier.AddChannel(notify.NewTerminalChannel(output.Writer(), bell))
			}

			e.Hub.Start(ctx)
			defer e.Hub.Stop()

			if once {
				res := e.Controller.TickNow(ctx)
				if output.IsJSON() {
					return output.JSON(res)
				}
				printTickSummary(output, res)
				return res.Err
			}

			if !output.IsJSON() {
				output.Info("Watching %d symbols every %s. Press Ctrl+C to stop.",
					len(app.Config.Feed.Symbols), app.Config.Monitor.Interval)
				output.Println()
			}

			var wait func()
			switch {
			case output.IsJSON():
				wait = streamEvents(e.Hub, func(ev stream.Event) {
					if ev.Type == stream.EventAlertTriggered && ev.Alert != nil {
						output.JSON(ev.Alert)
					}
				})
			case prices:
				wait = streamEvents(e.Hub, func(ev stream.Event) {
					if ev.Type == stream.EventPrices {
						printPriceLine(output, ev)
					}
				})
			}

			e.Controller.Start(ctx)
			<-ctx.Done()
			e.Controller.Stop()
			if wait != nil {
				e.Hub.Stop()
				wait()
			}

			if !output.IsJSON() {
				st := e.Controller.Status()
				output.Println()
				output.Dim("Stopped after %d ticks, %d alerts fired.", st.Ticks, st.Fired)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single evaluation tick and exit")
	cmd.Flags().BoolVar(&bell, "bell", false, "ring the terminal bell on each alert")
	cmd.Flags().BoolVar(&prices, "prices", false, "print the price snapshot on every tick while watching")
	return cmd
}

// streamEvents handles every hub event on one goroutine in delivery order.
// The returned func blocks until the hub is stopped and the stream drained.
func streamEvents(hub *stream.Hub, handle func(stream.Event)) (wait func()) {
	events := hub.Subscribe(stream.AllSymbols)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			handle(ev)
		}
	}()
	return func() { <-done }
}

func printPriceLine(output *Output, ev stream.Event) {
	if ev.Prices == nil {
		return
	}
	snap := *ev.Prices
	parts := make([]string, 0, len(snap.Quotes))
	for _, symbol := range sortedSymbols(snap) {
		q := snap.Quotes[symbol]
		parts = append(parts, symbol+" "+FormatPrice(q.Price))
	}
	output.Printf("%s %s %s\n", output.DimText(FormatTime(snap.FetchedAt)), output.SourceTag(snap.Source), strings.Join(parts, "  "))
}

func printTickSummary(output *Output, res monitor.TickResult) {
	if res.Paused {
		output.Warning("Monitoring is paused; tick skipped.")
		return
	}
	if res.Err != nil {
		output.Error("Tick failed: %v", res.Err)
		return
	}
	output.Printf("%s evaluated %d, fired %d, missing %d, already pending %d (%s)\n",
		output.SourceTag(res.Source), res.Evaluated, len(res.Fired), res.Missing, res.Duplicates,
		FormatDuration(res.Duration))
}
