package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/history"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/stats"
	"github.com/spf13/cobra"
)

var (
	statsGame string
	statsFile string
	statsTop  int
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print frequency statistics of a game",
	Long: `Print per-number frequencies of the primary and secondary pools and the
12 most common primary pairs.

The draws come from the history database, or from a JSON history file
given with --file (the game is then read from the file).`,
	Example: `  # Statistics of the stored 双色球 history
  lottery-analyst stats --game ssq

  # Top 10 numbers of a history file, as JSON
  lottery-analyst stats --file dlt.json --top 10 --json`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsGame, "game", "ssq", "Game code or name (dlt, ssq, kl8, qxc)")
	statsCmd.Flags().StringVar(&statsFile, "file", "", "Read draws from a JSON history file instead of the database")
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "Only show the N most frequent numbers per pool")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the statistics as JSON")

	RootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsTop < 0 {
		return fmt.Errorf("invalid top: %d (must not be negative)", statsTop)
	}

	game, records, err := loadDraws(cmd)
	if err != nil {
		return err
	}

	st := stats.ComputeStatistics(records)
	if statsTop > 0 {
		st.PrimaryFrequency = st.TopPrimary(statsTop)
		st.SecondaryFrequency = st.TopSecondary(statsTop)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return printStatistics(out, game, len(records), st)
}

func loadDraws(cmd *cobra.Command) (lottery.Game, []lottery.DrawRecord, error) {
	if statsFile != "" {
		loaded, err := history.LoadFile(statsFile)
		if err != nil {
			return lottery.Game{}, nil, err
		}
		game, _ := lottery.Lookup(loaded.Game)
		return game, loaded.Records, nil
	}

	t, err := lottery.ParseGameType(statsGame)
	if err != nil {
		return lottery.Game{}, nil, err
	}
	game, _ := lottery.Lookup(t)

	dir := dataDir
	if dir == "" {
		if dir, err = config.DataStoreDir(); err != nil {
			return lottery.Game{}, nil, err
		}
	}
	store, err := history.NewStore(filepath.Join(dir, "history.db"))
	if err != nil {
		return lottery.Game{}, nil, err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), t, 0)
	if err != nil {
		return lottery.Game{}, nil, err
	}
	return game, records, nil
}

func printStatistics(out io.Writer, game lottery.Game, draws int, st stats.Statistics) error {
	fmt.Fprintf(out, "%s (%s), %d draws\n\n", game.Name, game.Type, draws)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIMARY\tCOUNT")
	for _, c := range st.PrimaryFrequency {
		fmt.Fprintf(tw, "%d\t%d\n", c.Number, c.Count)
	}
	if game.HasSecondary() {
		fmt.Fprintln(tw, "\nSECONDARY\tCOUNT")
		for _, c := range st.SecondaryFrequency {
			fmt.Fprintf(tw, "%d\t%d\n", c.Number, c.Count)
		}
	}
	fmt.Fprintln(tw, "\nPAIR\tCOUNT")
	for _, p := range st.TopPrimaryPairs {
		fmt.Fprintf(tw, "%d-%d\t%d\n", p.A, p.B, p.Count)
	}
	return tw.Flush()
}
