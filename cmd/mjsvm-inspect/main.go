// Command mjsvm-inspect polls a running mjsvm process's
// /debug/mjsvm/snapshot endpoint and prints heap occupancy and GC counters,
// either once, on a watch interval, or as JSON, via a cobra.Command rather
// than hand-rolled flag.Parse.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voskan/mjsvm/internal/diagnostics"
)

var version = "dev"

var (
	target   string
	watch    bool
	interval time.Duration
	jsonOut  bool
)

var rootCmd = &cobra.Command{
	Use:   "mjsvm-inspect",
	Short: "Inspect a running mjsvm Runtime's heap and GC state",
	Long: `mjsvm-inspect fetches the JSON snapshot a Runtime exposes at
/debug/mjsvm/snapshot (see internal/diagnostics) and renders it as either a
short human-readable summary or raw JSON, optionally polling on an
interval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInspect,
}

func init() {
	rootCmd.Flags().StringVar(&target, "target", "http://localhost:6060", "base URL of the mjsvm process to inspect")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "poll repeatedly instead of a single dump")
	rootCmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval when --watch is set")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw JSON snapshot instead of a summary")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the mjsvm-inspect version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if watch {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return nil
			}
		}
	}

	return dumpOnce(ctx)
}

func dumpOnce(ctx context.Context) error {
	snap, err := fetchSnapshot(ctx, target)
	if err != nil {
		return err
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return prettyPrint(snap)
}

func fetchSnapshot(ctx context.Context, base string) (diagnostics.Snapshot, error) {
	var snap diagnostics.Snapshot
	url := base + "/debug/mjsvm/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return snap, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return snap, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("unexpected status %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func prettyPrint(snap diagnostics.Snapshot) error {
	fmt.Printf("Young: %d/%d bytes (%d live)\n", snap.YoungBytesUsed, snap.YoungCapacity, snap.LiveYoungCount)
	fmt.Printf("Old:   %d/%d bytes (%d live)\n", snap.OldBytesUsed, snap.OldCapacity, snap.LiveOldCount)
	fmt.Printf("GC:    %d minor, %d major\n", snap.MinorGCCount, snap.MajorGCCount)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mjsvm-inspect:", err)
		os.Exit(1)
	}
}
