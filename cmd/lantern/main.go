package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/config"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
	"github.com/lanternpress/lantern/pkg/readcache"
	"github.com/lanternpress/lantern/pkg/search"
	"github.com/lanternpress/lantern/pkg/storage/memory"
	"github.com/lanternpress/lantern/pkg/storage/postgres"
	"github.com/lanternpress/lantern/pkg/transport/web"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		listenAddr = flag.String("listen", "", "Listen address (overrides config)")
		quiet      = flag.Bool("quiet", false, "Only log warnings and errors")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	logger, err := buildLogger(cfg, *quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, logger); err != nil {
		logger.Error("server exited with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger *logging.Logger) error {
	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer cleanup()

	cache := readcache.New(readcache.Options{
		Enabled: cfg.Cache.Enabled,
		TTL:     time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	})
	reader := readcache.NewReader(cache, store, logger)

	index, err := search.NewPostIndex(cfg.Search.IndexPath, cfg.Search.MaxResults)
	if err != nil {
		return fmt.Errorf("opening search index: %w", err)
	}
	defer index.Close()

	hook := search.NewIndexHook(index, logger)
	if posts, err := store.Posts().List(ctx); err != nil {
		logger.Warn("could not seed search index", map[string]interface{}{"error": err.Error()})
	} else {
		hook.Seed(posts)
	}

	engine := search.NewEngine(index, store.Posts(), store.Users(), logger)
	server := web.NewServer(store, reader, engine, hook, logger, cfg.Server.MaxConnections)

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, logger, func(updated *config.Config) {
				cache.SetEnabled(updated.Cache.Enabled)
				cache.SetTTL(time.Duration(updated.Cache.TTLSeconds) * time.Second)
				if level, err := logging.ParseLogLevel(updated.Logging.Level); err == nil {
					logger.SetLevel(level)
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watch stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	logger.Info("lantern starting", map[string]interface{}{
		"backend":       cfg.Database.Backend,
		"cache_enabled": cfg.Cache.Enabled,
		"cache_ttl":     cfg.Cache.TTLSeconds,
	})

	return server.ListenAndServe(ctx, cfg.Server.ListenAddr)
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (content.Store, func(), error) {
	switch cfg.Database.Backend {
	case "postgres":
		db, err := postgres.NewDatabase(ctx, &postgres.Config{
			ConnectionString: cfg.Database.DSN,
			MaxConnections:   cfg.Database.MaxConnections,
			MigrationsPath:   cfg.Database.MigrationsPath,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigrateToLatest(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to postgres", nil)
		return db, db.Close, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

func buildLogger(cfg *config.Config, quiet bool) (*logging.Logger, error) {
	level, err := logging.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if quiet {
		level = logging.WarnLevel
	}

	format := logging.TextFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	} else if cfg.Logging.Format == "" && !term.IsTerminal(int(os.Stdout.Fd())) {
		// Piped output defaults to machine-readable records.
		format = logging.JSONFormat
	}

	logCfg := &logging.Config{
		Level:  level,
		Format: format,
		Output: os.Stdout,
	}

	switch cfg.Logging.Output {
	case "file":
		out, err := logging.CreateFileOutput(cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		logCfg.Output = out
	case "both":
		out, err := logging.CreateCombinedOutput(cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		logCfg.Output = out
	}

	return logging.NewLogger(logCfg), nil
}
