package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/h3nnn4n/colosseum/internal/match"
	"github.com/h3nnn4n/colosseum/internal/spectate"
	"github.com/h3nnn4n/colosseum/internal/term"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Inspect a replay journal",
}

var replayShowCmd = &cobra.Command{
	Use:   "show <replay-file>",
	Short: "Print a per-tick summary of a completed replay journal",
	Args:  cobra.ExactArgs(1),
	Run:   runReplayShow,
}

var replayTailCmd = &cobra.Command{
	Use:   "tail <replay-file>",
	Short: "Serve a live WebSocket feed of a replay journal as it grows",
	Long: `tail starts the same spectate feed colosseum run --spectate starts,
but pointed at an existing (or still-growing) replay file — useful for
reconnecting a viewer to a match that's already underway.`,
	Args: cobra.ExactArgs(1),
	Run:  runReplayTail,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.AddCommand(replayShowCmd)
	replayCmd.AddCommand(replayTailCmd)

	replayTailCmd.Flags().String("addr", ":8900", "Address to serve the WebSocket feed on")
}

func runReplayShow(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		Fatal("opening replay file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	count := 0
	for scanner.Scan() {
		var rec match.ReplayRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			Fatal("parsing tick %d: %v", count+1, err)
		}
		printTick(rec)
		count++
	}
	if err := scanner.Err(); err != nil {
		Fatal("reading replay file: %v", err)
	}

	fmt.Printf("\n%s %d ticks\n", term.Bold("total:"), count)
}

func printTick(rec match.ReplayRecord) {
	header := fmt.Sprintf("tick %d/%d", rec.Epoch, rec.MaxEpoch)
	fmt.Printf("%s  agents=%v\n", term.Bold(header), rec.AgentIDs)
	for _, a := range rec.AgentActions {
		fmt.Printf("  %s: %v\n", term.Cyan(a.AgentID), a.Actions)
	}
}

func runReplayTail(cmd *cobra.Command, args []string) {
	path := args[0]
	addr, _ := cmd.Flags().GetString("addr")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := spectate.NewHub(nil)
	go hub.Run()

	tailer := spectate.NewTailer(path, hub, 0, nil)
	go func() {
		if err := tailer.Run(ctx); err != nil && err != context.Canceled {
			Fatal("tailing replay file: %v", err)
		}
	}()

	fmt.Printf("%s serving %s on %s\n", term.Bold("colosseum replay tail:"), term.Cyan(path), addr)
	srv := &http.Server{Addr: addr, Handler: hub}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		Fatal("serving spectate feed: %v", err)
	}
}
