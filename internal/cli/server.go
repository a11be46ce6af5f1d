package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-service/internal/app"
	"interview-service/internal/config"
	"interview-service/internal/infra/memory"
	pgstore "interview-service/internal/infra/postgres"
	redisinfra "interview-service/internal/infra/redis"
	"interview-service/internal/oracle"
	transport "interview-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	reportTTL := config.Duration(cfg.Interview.ReportTTL, 10*time.Minute)

	var store app.Store
	var reports app.ReportRepository
	if pool != nil {
		pg := pgstore.NewStore(pool)
		store = pg
		reports = newReportRepository(redisClient, pg, reportTTL)
	} else {
		mem := memory.NewStore()
		store = mem
		reports = newReportRepository(redisClient, mem, reportTTL)
	}

	service := app.NewInterviewService(store, reports, newOracle(cfg), cfg.SessionLength())
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting interview service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newReportRepository(client *redis.Client, loader memory.ReportLoader, ttl time.Duration) app.ReportRepository {
	if client != nil {
		return redisinfra.NewReportCache(client, loader, ttl)
	}
	return memory.NewReportCache(loader, ttl)
}

// newOracle connects to Groq when an API key is configured; otherwise the
// deterministic scripted oracle keeps the service usable for local demos.
func newOracle(cfg config.Config) app.Oracle {
	keyEnv := cfg.Oracle.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "GROQ_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		log.Printf("no API key in $%s, using scripted oracle", keyEnv)
		return oracle.NewScripted()
	}
	return oracle.NewClient(oracle.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Oracle.Model,
		Timeout: config.Duration(cfg.Oracle.Timeout, 30*time.Second),
	})
}
