package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"learning-progress-service/internal/app"
	"learning-progress-service/internal/config"
	"learning-progress-service/internal/content"
	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/infra/memory"
	"learning-progress-service/internal/infra/postgres"
	infraredis "learning-progress-service/internal/infra/redis"
	"learning-progress-service/internal/logger"
	"learning-progress-service/internal/metrics"
	"learning-progress-service/internal/progression"
	transport "learning-progress-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the progress server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores groups the persistence backends picked from config.
type stores struct {
	progress app.ProgressStore
	stats    app.StatsStore
	attempts app.AttemptRepository
	quizzes  app.QuizRepository
	roadmaps app.RoadmapStore
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	tracker, err := progression.NewStreakTracker(cfg.Streak.Timezone)
	if err != nil {
		return err
	}

	st, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	opts := []app.Option{app.WithLogger(log), app.WithMetrics(m), app.WithStreakTracker(tracker)}
	progress := app.NewProgressService(st.progress, st.stats, opts...)
	quizzes := app.NewQuizService(st.quizzes, st.attempts, progress, opts...)
	courses := app.NewCourseService(st.roadmaps, st.progress, opts...)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(quizzes, progress, courses, m, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting progress service", zap.String("port", finalPort), zap.String("streak_zone", tracker.Location.String()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
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

// openStores wires Redis and Postgres when configured and falls back to memory otherwise.
// Progress and roadmaps prefer Postgres, then Redis. Quiz content comes from Postgres, the quiz
// file or the built-in sample, cached in Redis or memory. Without Postgres, roadmaps from the
// quiz file or the sample are loaded into the Redis or memory roadmap store at startup.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var (
		loader   memory.QuizLoader
		roadmaps map[string]domain.Roadmap
		st       stores
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return stores{}, nil, err
		}
		closers = append(closers, pool.Close)
		loader = postgres.NewQuizLoader(pool)

		db := postgres.OpenDB(cfg.Postgres.URL)
		closers = append(closers, func() { _ = db.Close() })
		pg := postgres.NewProgressStore(db)
		st.progress, st.stats = pg, pg
		st.roadmaps = postgres.NewRoadmapStore(db)
	} else if cfg.Quiz.File != "" {
		fileLoader, err := memory.NewFileQuizLoader(cfg.Quiz.File)
		if err != nil {
			cleanup()
			return stores{}, nil, err
		}
		loader = fileLoader
		if roadmaps, err = content.LoadRoadmapsFile(cfg.Quiz.File); err != nil {
			cleanup()
			return stores{}, nil, err
		}
	} else {
		log.Warn("no quiz source configured, serving the built-in sample quiz")
		loader = memory.NewStaticQuizLoader(sampleQuizzes())
		roadmaps = sampleRoadmaps()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, 2*time.Hour)
	if redisClient != nil {
		st.quizzes = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
		st.attempts = infraredis.NewAttemptStore(redisClient, attemptTTL)
		if st.progress == nil {
			rs := infraredis.NewProgressStore(redisClient)
			st.progress, st.stats = rs, rs
		}
		if st.roadmaps == nil {
			st.roadmaps = infraredis.NewRoadmapStore(redisClient)
		}
	} else {
		st.quizzes = memory.NewQuizRepository(loader, quizTTL)
		st.attempts = memory.NewAttemptStore()
	}
	if st.progress == nil {
		log.Warn("progress is kept in memory and lost on restart")
		ms := memory.NewProgressStore()
		st.progress, st.stats = ms, ms
	}
	if st.roadmaps == nil {
		st.roadmaps = memory.NewRoadmapStore(nil)
	}
	for _, name := range sortedKeys(roadmaps) {
		if err := st.roadmaps.SaveRoadmap(ctx, roadmaps[name]); err != nil {
			cleanup()
			return stores{}, nil, err
		}
	}
	return st, cleanup, nil
}

// sampleQuizzes is served when no content source is configured.
func sampleQuizzes() map[string]domain.QuizDefinition {
	quizzes, err := content.Parse([]byte(sampleContent))
	if err != nil {
		panic(err)
	}
	return quizzes
}

func sampleRoadmaps() map[string]domain.Roadmap {
	roadmaps, err := content.ParseRoadmaps([]byte(sampleContent))
	if err != nil {
		panic(err)
	}
	return roadmaps
}

const sampleContent = `
quizzes:
  - id: python-basics
    title: Python Fundamentals
    questions:
      - id: "1"
        prompt: Which symbol starts a single-line comment in Python?
        options: ["/", "//", "#", "/* */"]
        correctAnswer: 2
      - id: "2"
        prompt: Which of these is a valid variable name?
        options: ["2myVar", "my-var", "my_var", "my var"]
        correctAnswer: 2
      - id: "3"
        prompt: What does type(42) return?
        options: ["int", "float", "str", "number"]
        correctAnswer: 0
roadmaps:
  - name: python
    modules:
      - name: Python
        description: Core language fundamentals
        subskills:
          - name: Basics
          - name: Control Flow
`
