package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/attrs/internal/attribute"
	"github.com/l1jgo/attrs/internal/config"
	"github.com/l1jgo/attrs/internal/core/ecs"
	coresys "github.com/l1jgo/attrs/internal/core/system"
	"github.com/l1jgo/attrs/internal/data"
	"github.com/l1jgo/attrs/internal/persist"
	"github.com/l1jgo/attrs/internal/scripting"
	"github.com/l1jgo/attrs/internal/system"
	"github.com/l1jgo/attrs/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// errFinished ends the simulation loop once max_ticks is reached.
var errFinished = errors.New("simulation finished")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             attrsim  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     attribute & buff simulation host      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := max(42-len(label)-len(s), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Simulation host ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/attrsim.toml"
	if p := os.Getenv("ATTRSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Design data
	printSection("Data")
	sets, err := data.LoadAttributeSets(cfg.Data.AttributesPath)
	if err != nil {
		return fmt.Errorf("load attribute sets: %w", err)
	}
	printStat("attribute sets", sets.Count())
	printStat("attribute definitions", len(sets.Definitions()))

	buffs, err := data.LoadBuffTable(cfg.Data.BuffsPath)
	if err != nil {
		return fmt.Errorf("load buffs: %w", err)
	}
	printStat("buff definitions", buffs.Count())

	// 4. Script hooks
	if cfg.Data.ScriptsDir != "" {
		engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()

		attrHooks, buffHooks := 0, 0
		for _, def := range sets.Definitions() {
			if engine.BindDefinition(def) {
				attrHooks++
			}
		}
		for _, id := range buffs.IDs() {
			b, _ := buffs.Get(id)
			if engine.BindBuff(id, b) {
				buffHooks++
			}
		}
		printStat("scripted attributes", attrHooks)
		printStat("scripted buffs", buffHooks)
	}
	fmt.Println()

	// 5. Optional journal
	var (
		journal *system.JournalSystem
		repo    *persist.JournalRepo
	)
	if cfg.Journal.Enabled {
		printSection("Journal")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Journal, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		err = persist.RunMigrations(dbCtx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		repo = persist.NewJournalRepo(db)
		journal = system.NewJournalSystem(repo, log, cfg.Journal.FlushEveryTicks, cfg.Journal.BatchSize)
		fmt.Println()
	}

	// 6. Entities and systems
	roster := world.NewRoster(log, attribute.WithManualTicking(cfg.Simulation.ManualTicking))
	if journal != nil {
		roster.OnSpawn(journal.Attach)
	}

	runner := coresys.NewRunner()
	scenario := system.NewScenarioSystem(roster, sets, buffs, cfg.Scenario, log)
	runner.Register(scenario)
	runner.Register(system.NewAttributeTickSystem(roster))
	if journal != nil {
		runner.Register(journal)
	}
	runner.Register(system.NewCleanupSystem(roster))

	// 7. Run
	printSection("Simulation")
	printStat("tick rate", cfg.Simulation.TickRate)
	printStat("scenario steps", len(cfg.Scenario))
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				runner.Tick(cfg.Simulation.TickRate)
				if cfg.Simulation.MaxTicks > 0 && runner.Ticks() >= cfg.Simulation.MaxTicks {
					return errFinished
				}
			}
		}
	})
	if repo != nil && cfg.Journal.Retention > 0 {
		g.Go(func() error {
			return pruneJournal(gctx, repo, cfg.Journal.Retention, log)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errFinished) {
		return err
	}
	log.Info("simulation stopped", zap.Uint64("ticks", runner.Ticks()))

	if journal != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := journal.Flush(flushCtx); err != nil {
			log.Error("final journal flush failed", zap.Int("pending", journal.Pending()), zap.Error(err))
		}
	}

	printSummary(roster)
	return nil
}

// pruneJournal drops expired journal entries now and then every retention
// period until ctx ends.
func pruneJournal(ctx context.Context, repo *persist.JournalRepo, retention time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(retention)
	defer ticker.Stop()
	for {
		n, err := repo.Prune(ctx, time.Now().Add(-retention))
		if err != nil && ctx.Err() == nil {
			log.Error("journal prune failed", zap.Error(err))
		} else if n > 0 {
			log.Info("journal pruned", zap.Int64("entries", n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printSummary(roster *world.Roster) {
	fmt.Println()
	printSection("Final state")
	roster.Each(func(_ ecs.EntityID, p *world.Profile, c *attribute.Container) {
		fmt.Printf("  \033[1m%s\033[0m \033[90m(%s)\033[0m\n", p.Name, p.SetName)
		for _, ra := range c.Attributes() {
			printStat("  "+ra.Name(), fmt.Sprintf("%g (buffed %g, %d queued)", ra.Value(), ra.BuffedValue(), len(ra.Buffs())))
		}
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
