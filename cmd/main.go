package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"toothless_dashboard/internal/config"
	"toothless_dashboard/internal/infrastructure"
	"toothless_dashboard/internal/interfaces"
	httpapi "toothless_dashboard/internal/interfaces/http"
	"toothless_dashboard/internal/repository"
	"toothless_dashboard/internal/usecases"
)

func main() {
	app := &cli.App{
		Name:  "toothless-dashboard",
		Usage: "Toothless dashboard backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			newMigrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	configureLogging(cfg.Log)
	return cfg, nil
}

func configureLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func openBackend(ctx context.Context, cfg config.StorageConfig) (interfaces.Backend, error) {
	switch cfg.Driver {
	case "file":
		return infrastructure.NewFileBackend(cfg.DataPath, infrastructure.LegacyFileNames)
	case "postgres":
		return infrastructure.NewPostgresBackend(ctx, cfg.DatabaseURL)
	case "sqlite":
		return infrastructure.NewSQLiteBackend(ctx, cfg.SQLitePath)
	case "memory":
		return infrastructure.NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

type publisher interface {
	interfaces.EventPublisher
	Close() error
}

func openPublisher(url string) (publisher, error) {
	if url == "" {
		return infrastructure.NewNoopEventPublisher(), nil
	}
	return infrastructure.NewNATSEventPublisher(url)
}

func openDirectory(token string) (interfaces.GuildDirectory, error) {
	if token == "" {
		log.Warn("TOKEN not set, serving demo guild data")
		return infrastructure.DemoDirectory{}, nil
	}
	return infrastructure.NewDiscordDirectory(token)
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := infrastructure.NewMetrics()

	backend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	store, err := repository.Open(ctx, backend, repository.Options{
		Mode:     repository.UpdateMode(cfg.Settings.UpdateMode),
		Observer: metrics,
	})
	if err != nil {
		backend.Close()
		return err
	}
	defer store.Close()

	events, err := openPublisher(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer events.Close()

	directory, err := openDirectory(cfg.Discord.BotToken)
	if err != nil {
		return err
	}

	var membership interfaces.GuildDirectory
	if cfg.Discord.BotToken != "" {
		membership = directory
	}
	auth := usecases.NewAuthUsecase(usecases.AuthConfig{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		APIBaseURL:   cfg.Discord.APIURL,
		Timeout:      cfg.Discord.OAuthTimeout,
		StateSecret:  cfg.Discord.StateSecret,
	}, membership, infrastructure.NewExchangeGuard(10*time.Minute), metrics)
	dashboard := usecases.NewDashboardUsecase(store, directory, events, metrics)
	leaderboards := usecases.NewLeaderboardUsecase(repository.NewRecordRepository(backend, metrics))
	bot := usecases.NewBotUsecase(cfg.Discord.ClientID, cfg.Discord.APIURL)

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	handler := httpapi.NewHandler(auth, dashboard, leaderboards, bot, cfg.RedirectURI())
	middleware := httpapi.NewMiddleware(cfg.Server.DashboardURL, metrics)
	httpapi.SetupRoutes(r, handler, middleware, httpapi.RateLimit{
		RPS:   cfg.Server.RateLimitRPS,
		Burst: cfg.Server.RateLimitBurst,
	}, metrics.Handler())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":    srv.Addr,
			"storage": cfg.Storage.Driver,
			"mode":    cfg.Settings.UpdateMode,
		}).Info("Dashboard API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the Postgres schema",
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Storage.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrations")
			}
			c.App.Metadata = map[string]interface{}{"database_url": cfg.Storage.DatabaseURL}
			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					if err := infrastructure.RunMigrationsWithURL(databaseURL(c)); err != nil {
						return err
					}
					log.Info("Migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					return infrastructure.MigrateDown(databaseURL(c), c.Int("steps"))
				},
			},
			{
				Name:  "status",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					return infrastructure.MigrateStatus(databaseURL(c))
				},
			},
		},
	}
}

func databaseURL(c *cli.Context) string {
	url, _ := c.App.Metadata["database_url"].(string)
	return url
}
