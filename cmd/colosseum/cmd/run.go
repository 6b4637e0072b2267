package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/h3nnn4n/colosseum/internal/game"
	"github.com/h3nnn4n/colosseum/internal/game/rps"
	"github.com/h3nnn4n/colosseum/internal/match"
	"github.com/h3nnn4n/colosseum/internal/spawn"
	"github.com/h3nnn4n/colosseum/internal/spectate"
	"github.com/h3nnn4n/colosseum/internal/term"
)

var runCmd = &cobra.Command{
	Use:   "run <agent-path> [agent-path...]",
	Short: "Run one match between two or more agents",
	Long: `run spawns each agent as a child process, drives the match to
completion (or until an agent is tainted), and prints a summary.

The reference "rps" game is the only game bundled with this CLI; real
games register their own internal/game.Game implementation and supply
their own entry point, following the same contract.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("game-name", "", "Game name (default depends on config file / rps)")
	f.String("update-mode", "", "SIMULTANEOUS, ALTERNATING, or ISOLATED")
	f.Int("n-epochs", 0, "Number of ticks (ignored by games that decide finishing themselves)")
	f.Duration("step-time-limit", 0, "Per-tick soft time limit")
	f.Duration("step-limit-pool", 0, "Cumulative overtime budget before TIMEOUT taint")
	f.String("replay-dir", "", "Directory to write the replay journal into")
	f.String("spectate", "", "Start a live WebSocket spectate feed on this address (e.g. :8900)")
}

func runRun(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = "colosseum.yaml"
	}

	var cfg match.RunConfig
	applyRunFlags(cmd, &cfg)
	if err := match.LoadRunConfigFile(configPath, &cfg); err != nil {
		Fatal("loading config: %v", err)
	}
	for _, path := range args {
		cfg.Agents = append(cfg.Agents, match.AgentSpec{Path: path})
	}

	cfg.ApplyDefaults()
	if cfg.Game.GameName == "" {
		cfg.Game.GameName = "rps"
	}
	if err := cfg.Validate(); err != nil {
		Fatal("invalid configuration: %v", err)
	}

	for i := range cfg.Agents {
		if cfg.Agents[i].ID == "" {
			cfg.Agents[i].ID = uuid.NewString()
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var g game.Game
	switch cfg.Game.GameName {
	case "rps":
		g = rps.New(cfg.Game)
		cfg.Game = g.Config()
	default:
		Fatal("unknown game %q (only the bundled reference game %q is available)", cfg.Game.GameName, "rps")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spawner := spawn.NewSpawner(nil, nil)
	supervisors := make([]*match.Supervisor, 0, len(cfg.Agents))
	for _, a := range cfg.Agents {
		proc, err := spawner.Spawn(ctx, a.Path, a.ID)
		if err != nil {
			Fatal("spawning agent %s (%s): %v", a.ID, a.Path, err)
		}
		supervisors = append(supervisors, match.NewSupervisor(a.ID, a.Path, proc, cfg.Game, log))
	}

	journal := match.NewJournal(cfg.ReplayDir, cfg.Game.GameName, nil)

	spectateAddr := cfg.SpectateOn
	if v, _ := cmd.Flags().GetString("spectate"); v != "" {
		spectateAddr = v
	}
	if spectateAddr != "" {
		startSpectateServer(ctx, spectateAddr, journal, log)
	}

	engine := match.NewEngine(g, supervisors, cfg.Game, journal, log)

	fmt.Printf("%s %s (%d agents, %s)\n", term.Bold("colosseum run:"), term.Cyan(cfg.Game.GameName), len(supervisors), cfg.Game.UpdateMode)

	result, err := engine.Run(ctx)
	if err != nil {
		Fatal("match aborted: %v", err)
	}

	printResult(result)
}

// applyRunFlags copies non-zero CLI flag values into cfg before the
// config file is merged, so a flag given a non-zero value wins over the
// file value.
func applyRunFlags(cmd *cobra.Command, cfg *match.RunConfig) {
	f := cmd.Flags()
	if v, _ := f.GetString("game-name"); v != "" {
		cfg.Game.GameName = v
	}
	if v, _ := f.GetString("update-mode"); v != "" {
		cfg.Game.UpdateMode = game.UpdateMode(v)
	}
	if v, _ := f.GetInt("n-epochs"); v != 0 {
		cfg.Game.NEpochs = v
	}
	if v, _ := f.GetDuration("step-time-limit"); v != 0 {
		cfg.Game.StepTimeLimit = v
	}
	if v, _ := f.GetDuration("step-limit-pool"); v != 0 {
		cfg.Game.StepLimitPool = v
	}
	if v, _ := f.GetString("replay-dir"); v != "" {
		cfg.ReplayDir = v
	}
}

func startSpectateServer(ctx context.Context, addr string, journal *match.Journal, log *slog.Logger) {
	hub := spectate.NewHub(log)
	go hub.Run()

	srv := &http.Server{Addr: addr, Handler: hub}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("spectate server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// The journal's path isn't known until the first tick opens it; poll
	// for it in the tailer goroutine itself rather than blocking here.
	go func() {
		for journal.Path() == "" {
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
		tailer := spectate.NewTailer(journal.Path(), hub, 0, log)
		_ = tailer.Run(ctx)
	}()

	fmt.Printf("%s spectate feed on %s\n", term.Dim("colosseum run:"), addr)
}

func printResult(result *match.MatchResult) {
	fmt.Println()
	fmt.Printf("%s %s\n", term.Bold("outcome:"), term.Cyan(result.Outcome.Termination))

	for i, a := range result.Agents {
		label := fmt.Sprintf("%d. %s", i+1, a.ID)
		status := term.Green("ok")
		if a.Tainted {
			status = term.Redf("tainted (%s)", a.TaintReason)
		}
		fmt.Printf("  %s  score=%s  %s\n", term.PadRight(label, 24, term.Cyan), term.Bold(fmt.Sprintf("%.2f", a.Score)), status)
	}

	if result.ReplayFile != "" {
		fmt.Printf("\n%s %s\n", term.Dim("replay:"), result.ReplayFile)
	}
}
