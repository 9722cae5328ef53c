package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/logger"
	"trivia-quiz-service/internal/observability"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type questionStore interface {
	LoadCatalog(ctx context.Context) ([]domain.Question, error)
	ImportQuestions(ctx context.Context, questions []domain.Question) (int, error)
}

// buildService wires stores by configuration: Postgres when a URL is set, Redis when an
// address is set, in-memory otherwise. The returned func releases every connection.
func buildService(ctx context.Context, cfg config.Config, log *logger.Logger) (*app.QuizService, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app.QuizService, func(), error) {
		closeAll()
		return nil, nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("redis ping: %w", err))
		}
	}

	var (
		questions questionStore
		attempts  app.AttemptRepository
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return fail(err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("postgres connect: %w", err))
		}
		closers = append(closers, pool.Close)
		db := postgres.OpenBun(cfg.Postgres.URL)
		closers = append(closers, func() { _ = db.Close() })

		questions = postgres.NewQuestionStore(pool)
		attempts = postgres.NewAttemptStore(db)
	} else {
		log.Warn("postgres not configured, serving the built-in sample catalog")
		questions = memory.NewQuestionStore(sampleQuestions()...)
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	var (
		source   app.QuestionSource
		sessions app.SessionRepository
	)
	if redisClient != nil {
		source = redisstore.NewCatalogCache(redisClient, questions, catalogTTL)
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
		if attempts == nil {
			attempts = redisstore.NewAttemptStore(redisClient)
		}
	} else {
		source = memory.NewCatalogCache(questions, catalogTTL)
		sessions = memory.NewSessionStore()
	}
	if attempts == nil {
		attempts = memory.NewAttemptStore()
	}

	bank := app.NewQuestionBank(source, questions, nil)
	service := app.NewQuizService(attempts, sessions, bank,
		app.WithLogger(log),
		app.WithQuestionCount(config.IntOr(cfg.Quiz.QuestionCount, domain.DefaultQuestionCount)),
		app.WithLeaderboardLimit(config.IntOr(cfg.Quiz.LeaderboardLimit, 10)),
	)
	return service, closeAll, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	service, closeStores, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	requestTimeout := config.TTLDuration(cfg.Server.RequestTimeout, 5*time.Second)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewRESTHandler(service, requestTimeout, log).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, requestTimeout, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      otelhttp.NewHandler(mux, "trivia-http"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trivia service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
