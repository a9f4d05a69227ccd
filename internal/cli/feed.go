package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"market-alerts/internal/feed"
	"market-alerts/internal/models"
)

// addFeedCommands adds price feed commands.
func addFeedCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newFeedCmd(app))
}

func newFeedCmd(app *App) *cobra.Command {
	var syntheticOnly bool

	cmd := &cobra.Command{
		Use:     "feed",
		Aliases: []string{"quotes", "prices"},
		Short:   "Show the current price snapshot",
		Long: `Fetch one snapshot of the watched universe.

The live endpoint is tried first; on any failure the deterministic synthetic
generator is used and the snapshot is tagged [SYNTHETIC].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			fc := app.Config.Feed
			if syntheticOnly {
				fc.BaseURL = ""
			}
			adapter := feed.NewFromConfig(fc, app.Logger)

			snap := adapter.Snapshot(cmd.Context())

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"snapshot": snap,
					"status":   adapter.Status(),
				})
			}

			output.Printf("%s %s\n", output.SourceTag(snap.Source), output.DimText(FormatDateTime(snap.FetchedAt)))
			if status := adapter.Status(); status.LastError != "" {
				output.Warning("Live feed unavailable: %s", status.LastError)
			}
			output.Println()
			renderSnapshot(output, snap, app.Config.SymbolList())
			return nil
		},
	}

	cmd.Flags().BoolVar(&syntheticOnly, "synthetic", false, "skip the live endpoint")
	return cmd
}

// renderSnapshot prints quotes in configured order, followed by any extra
// symbols the feed returned.
func renderSnapshot(output *Output, snap models.PriceSnapshot, order []string) {
	table := NewTable(output, "SYMBOL", "PRICE", "CHANGE")

	seen := make(map[string]bool, len(order))
	for _, symbol := range order {
		seen[symbol] = true
		q, ok := snap.Lookup(symbol)
		if !ok {
			table.AddRow(symbol, output.DimText("n/a"), output.DimText("n/a"))
			continue
		}
		table.AddRow(symbol, FormatPrice(q.Price), output.ChangeColor(q.PercentChange))
	}

	for _, symbol := range sortedSymbols(snap) {
		if seen[symbol] {
			continue
		}
		q := snap.Quotes[symbol]
		table.AddRow(symbol, FormatPrice(q.Price), output.ChangeColor(q.PercentChange))
	}

	table.Render()
}

func sortedSymbols(snap models.PriceSnapshot) []string {
	symbols := make([]string, 0, len(snap.Quotes))
	for symbol := range snap.Quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
