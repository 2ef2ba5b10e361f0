package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/api"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/config"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/engine"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/persistence"
)

var (
	configPath string
	dbPath     string
	seed       int64
	days       int
	apiPort    int
	speed      float64
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "vikingsim",
	Short: "Raiding-age conflict campaign simulator",
	Long: `vikingsim runs a tick-driven military campaign: player war-bands raid
and besiege rival settlements while AI factions muster armies in response.
State persists to SQLite and a read-only HTTP API exposes the campaign.`,
	RunE: runCampaign,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "scenario YAML file (default: built-in scenario)")
	rootCmd.Flags().StringVar(&dbPath, "db", "data/campaign.db", "SQLite database path (empty = no persistence)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "override the scenario RNG seed")
	rootCmd.Flags().IntVar(&days, "days", 0, "simulate N days headless and exit (0 = run the live loop)")
	rootCmd.Flags().IntVar(&apiPort, "port", 8080, "HTTP API port")
	rootCmd.Flags().Float64Var(&speed, "speed", 1.0, "tick speed multiplier (0 = start paused)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func runCampaign(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := loadScenario()
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	sim, err := engine.BuildSimulation(cfg)
	if err != nil {
		return fmt.Errorf("build campaign: %w", err)
	}

	var db *persistence.DB
	if dbPath != "" {
		if dir := filepath.Dir(dbPath); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		db, err = persistence.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if db.HasState() {
			if err := db.LoadState(sim); err != nil {
				return fmt.Errorf("restore campaign: %w", err)
			}
		} else if err := db.SaveState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	if days > 0 {
		return runHeadless(sim, db, cfg.TickDays)
	}
	return runLive(sim, db, cfg.TickDays)
}

func loadScenario() (*config.Scenario, error) {
	if configPath == "" {
		slog.Info("no scenario file given, using built-in scenario")
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.Info("scenario loaded", "path", configPath)
	return cfg, nil
}

// runHeadless fast-forwards the campaign without the real-time loop.
func runHeadless(sim *engine.Simulation, db *persistence.DB, tickDays float64) error {
	slog.Info("headless run", "days", days, "tick_days", tickDays)

	end := sim.Day + float64(days)
	for sim.Day < end {
		sim.Advance(tickDays)
	}

	if db != nil {
		if err := db.SaveState(sim); err != nil {
			return fmt.Errorf("save campaign: %w", err)
		}
	}
	fmt.Printf("Simulated %d days. Campaign at %s.\n", days, engine.SimDate(sim.Day))
	return nil
}

// runLive runs the real-time loop with the HTTP API and daily autosave.
func runLive(sim *engine.Simulation, db *persistence.DB, tickDays float64) error {
	eng := engine.NewEngine()
	eng.TickDays = tickDays
	eng.SetSpeed(speed)

	lastSavedDay := int(sim.Day)
	eng.OnTick = func(tickSize float64) {
		sim.Advance(tickSize)
		if db != nil && int(sim.Day) > lastSavedDay {
			lastSavedDay = int(sim.Day)
			if err := db.SaveState(sim); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}

	adminKey := os.Getenv("VIKINGSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("VIKINGSIM_ADMIN_KEY not set — control POST endpoints will be disabled")
	}
	server := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("Campaign begins: %s.\n", engine.SimDate(sim.Day))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Running... (Ctrl+C to stop)")

	eng.Run()

	if db != nil {
		slog.Info("final save...")
		if err := db.SaveState(sim); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}
	fmt.Println("Campaign stopped. State saved.")
	return nil
}
