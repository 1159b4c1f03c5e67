package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"nutrify/diet-tracker/internal/ai"
	"nutrify/diet-tracker/internal/api"
	"nutrify/diet-tracker/internal/config"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/metrics"
	"nutrify/diet-tracker/internal/notify"
	"nutrify/diet-tracker/internal/nutrition"
	"nutrify/diet-tracker/internal/repository/mongo"
	"nutrify/diet-tracker/internal/service"
	"nutrify/diet-tracker/internal/storage"
)

// @title Diet Tracker API
// @version 1.0
// @description Nutrition goals, AI generated diet plans and a food log.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", logging.Err(err))
		os.Exit(1)
	}

	log := logging.Setup(cfg.Server.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting diet tracker", slog.String("env", cfg.Server.Env), slog.String("address", cfg.Server.Address))

	if cfg.Server.Env == logging.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		log.Error("invalid timezone", logging.Err(err))
		os.Exit(1)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		log.Error("could not connect to MongoDB", logging.Err(err))
		os.Exit(1)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", logging.Err(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	go func() {
		idxCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(idxCtx, appDB); err != nil {
			log.Error("index creation failed", logging.Err(err))
			return
		}
		log.Info("database indexes ensured")
	}()

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Notifications ---
	hub := notify.NewHub(cfg.Notify.SubscriberBuf)
	var (
		throttle notify.Throttle = notify.NewMemoryThrottle()
		sinks                    = []notify.Sink{hub}
	)
	if cfg.Redis.URL != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Error("could not connect to Redis", logging.Err(err))
			os.Exit(1)
		}
		defer func(c *redis.Client) { _ = c.Close() }(rdb)

		// Every instance publishes to Redis and relays the channel into its own hub.
		throttle = notify.NewRedisThrottle(rdb)
		sinks = []notify.Sink{notify.NewRedisSink(rdb)}
		go notify.Relay(ctx, rdb, hub, log)
		log.Info("redis notifications enabled")
	}
	notifier := notify.New(throttle, cfg.Notify.Interval, log, sinks, notify.WithMetrics(m))

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			log.Error("failed to initialize S3 storage", logging.Err(err))
			os.Exit(1)
		}
	} else {
		log.Warn("s3 bucket not configured, meal photos disabled")
	}

	// --- AI and fallback tables ---
	meals := nutrition.DefaultMealTable()
	if cfg.App.MealTablePath != "" {
		meals, err = nutrition.LoadMealTableFile(cfg.App.MealTablePath)
		if err != nil {
			log.Error("failed to load meal table", slog.String("path", cfg.App.MealTablePath), logging.Err(err))
			os.Exit(1)
		}
	}

	var generator ai.TextGenerator
	if cfg.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			log.Error("failed to initialize gemini", logging.Err(err))
			os.Exit(1)
		}
		generator = gemini
		log.Info("gemini enabled", slog.String("model", gemini.Model()))
	} else {
		log.Warn("gemini api key not set, using deterministic fallbacks only")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoDietPlanRepository(appDB)
	foodLogRepo := mongo.NewMongoFoodLogRepository(appDB)
	photoRepo := mongo.NewMongoFoodPhotoRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo)
	advisorService := service.NewAdvisorService(generator, meals, userRepo, planRepo, notifier, log, m)
	dietPlanService := service.NewDietPlanService(planRepo, notifier)
	foodLogService := service.NewFoodLogService(foodLogRepo, photoRepo, userRepo, advisorService, fileStorage, notifier, loc, log)

	// --- Initialize Gin Engine ---
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log), api.Metrics(m))

	api.SetupRoutes(router, api.Services{
		Auth:     authService,
		User:     userService,
		Advisor:  advisorService,
		DietPlan: dietPlanService,
		FoodLog:  foodLogService,
	}, hub, reg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", api.RequestIDHeader},
		ExposedHeaders: []string{api.RequestIDHeader},
	}).Handler(router)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", slog.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", logging.Err(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", logging.Err(err))
	}
	log.Info("server exiting")
}
