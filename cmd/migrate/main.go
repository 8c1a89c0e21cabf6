// Command migrate applies the arena schema migrations to the configured
// PostgreSQL database.
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
)

// zapMigrateLogger adapts zap to migrate.Logger.
type zapMigrateLogger struct {
	logger *zap.SugaredLogger
}

func (l zapMigrateLogger) Printf(format string, v ...interface{}) { l.logger.Infof(format, v...) }

func (l zapMigrateLogger) Verbose() bool {
	return l.logger.Desugar().Core().Enabled(zapcore.DebugLevel)
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "up, down, or version to only report the schema version")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	force := flag.Int("force", -1, "mark the schema as this version without running migrations, clearing the dirty flag")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("migrate").With(zap.String("database", cfg.Database.Name))

	m, err := migrate.New("file://"+*dir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.String("dir", *dir), zap.Error(err))
	}
	defer m.Close()
	m.Log = zapMigrateLogger{logger: logger.Sugar()}

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			logger.Fatal("forcing version", zap.Int("version", *force), zap.Error(err))
		}
		logger.Info("schema version forced", zap.Int("version", *force))
		return
	}

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		logger.Fatal("invalid direction: must be up, down or version", zap.String("direction", *direction))
	}

	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Fatal("reading schema version", zap.Error(verr))
	}
	logger.Info("schema version",
		zap.String("direction", *direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Bool("changed", *direction != "version" && !noChange),
		zap.Duration("elapsed", time.Since(start)),
	)
}
