// Package main provides the arena fight simulator: it loads content, builds
// two fighters, runs fights through the Arena with AI providers and prints
// the outcome. With a database configured it loads and commits player
// profiles and records fight logs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
)

func main() {
	start := time.Now()

	var opts options
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.StringVar(&opts.PlayerID, "player", "", "profile ID of the player (requires database.enabled)")
	flag.StringVar(&opts.OpponentID, "opponent", "", "profile ID of a PvP opponent (requires database.enabled); empty = fight a monster")
	flag.StringVar(&opts.Monster, "monster", "wolf", "monster template ID for PvE fights")
	flag.IntVar(&opts.Level, "level", 1, "monster level")
	flag.StringVar(&opts.PlayerAI, "player-ai", "duelist", "AI domain driving the player side; empty = first affordable attack")
	heroActions := flag.String("hero-actions", "strike,heavy_blow,shield_bash,bandage", "comma-separated actions of the built-in hero")
	flag.Uint64Var(&opts.Seed, "seed", 0, "RNG seed; 0 = random")
	flag.BoolVar(&opts.Friendly, "friendly", false, "friendly fight: no score changes")
	flag.IntVar(&opts.Fights, "fights", 1, "number of concurrent simulations (built-in hero only)")
	flag.Parse()
	opts.HeroActions = strings.Split(*heroActions, ",")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil {
		logger.Fatal("arena failed", zap.Error(err))
	}
	logger.Info("arena finished", zap.Duration("elapsed", time.Since(start)))
}
