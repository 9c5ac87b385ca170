package main

import (
	"cerebmod/internal/config"
	"cerebmod/internal/db"
	"cerebmod/internal/middleware"
	"cerebmod/internal/router"
	"cerebmod/internal/services"
	"cerebmod/internal/utils"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// .env first so EnvVars below can see it
	config.LoadDotEnv()

	dbFlag := &cli.StringFlag{
		Name:    "database-url",
		Usage:   "database connection string (postgres://... or sqlite://path)",
		EnvVars: []string{"DATABASE_URL"},
	}

	app := cli.App{
		Name:   "cerebmod",
		Usage:  "moderation assistant backend",
		Flags:  []cli.Flag{dbFlag},
		Action: runServe,
	}

	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "ensure the schema exists, then serve the API",
			Action: runServe,
			Flags: []cli.Flag{
				dbFlag,
				&cli.StringFlag{
					Name:    "port",
					Usage:   "HTTP listen port",
					Value:   "8080",
					EnvVars: []string{"PORT"},
				},
			},
		},
		{
			Name:   "migrate",
			Usage:  "ensure the schema exists and exit",
			Action: runMigrate,
			Flags:  []cli.Flag{dbFlag},
		},
	}

	return app.Run(args)
}

// loadConfig overlays CLI flags on the process environment.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	return config.Build(func(key string) string {
		switch key {
		case "DATABASE_URL":
			return lineageString(cctx, "database-url")
		case "PORT":
			if cctx.IsSet("port") {
				return cctx.String("port")
			}
		}
		return os.Getenv(key)
	})
}

// lineageString returns the first non-empty value of name, looking at the
// subcommand before the app so "cerebmod --database-url=x migrate" works too.
func lineageString(cctx *cli.Context, name string) string {
	for _, c := range cctx.Lineage() {
		if v := c.String(name); v != "" {
			return v
		}
	}
	return ""
}

func bootstrap(cctx *cli.Context) (*config.Config, *db.Provider, error) {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(cfg.Logger())

	provider, err := db.Init(cctx.Context, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, provider, nil
}

func runMigrate(cctx *cli.Context) error {
	_, provider, err := bootstrap(cctx)
	if err != nil {
		return err
	}
	return provider.Close()
}

func runServe(cctx *cli.Context) error {
	cfg, provider, err := bootstrap(cctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	cache, err := utils.NewCache(500)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	llm := services.NewLLMService(cfg.LLMBaseURL, cfg.LLMToken, cfg.LLMModel)
	if !llm.Enabled() {
		slog.Warn("LLM_BASE_URL not set, AI endpoints will return 503")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(slog.Default()))
	router.RegisterRoutes(r, router.Deps{DB: provider, LLM: llm, Cache: cache})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("cerebmod server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
