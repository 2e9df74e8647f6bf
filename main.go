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

	"github.com/docentes-portal/backend/handlers"
	"github.com/docentes-portal/backend/internal/auth"
	"github.com/docentes-portal/backend/internal/config"
	"github.com/docentes-portal/backend/internal/database"
	"github.com/docentes-portal/backend/internal/reconcile"
	"github.com/docentes-portal/backend/internal/security"
	"github.com/docentes-portal/backend/internal/sessions"
	"github.com/docentes-portal/backend/internal/storage"
	"github.com/docentes-portal/backend/internal/tokens"
	"github.com/docentes-portal/backend/internal/users"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/docentes-portal/backend/pkg/metrics"
	"github.com/docentes-portal/backend/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.InitWithFile(cfg.Log.Level, logger.FileOptions{Path: cfg.Log.File, MaxSizeMB: cfg.Log.MaxSizeMB, MaxBackups: cfg.Log.MaxBackups})
	defer logger.Sync()
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v jwt_secret_set=%v log_level=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.JWT.Secret != "", logger.LevelString())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors(cfg.Server.CORSOrigin))

	ctx := context.Background()

	// Redis backs token revocation and, optionally, the shared rate limiter
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		c := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			redisClient = c
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	revocations := sessions.NewRevocations(redisClient)

	// user directory: MongoDB when configured, otherwise in memory
	var dir users.Directory
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		mongoClient = client
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo := users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure user indexes: %v", err)
		}
		dir = repo
	} else {
		dir = users.NewMemoryRepository()
	}

	// MinIO archives uploaded workbooks and can serve the sync workbook
	var store *storage.MinIOStorage
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, workbooks will not be archived: %v", err)
		} else {
			store = s
		}
	}

	hasher := security.NewHasher(cfg.Bcrypt.Cost)
	issuer := tokens.NewIssuerFromConfig(cfg)
	authSvc := auth.NewService(dir, hasher, issuer)
	userSvc := users.NewService(dir, hasher)

	if admin, created, err := userSvc.EnsureAdmin(ctx, users.CreateUserInput{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
		Nombre:   cfg.Bootstrap.AdminNombre,
		Email:    cfg.Bootstrap.AdminEmail,
	}); err != nil {
		logger.Errorf("failed to seed initial administrator: %v", err)
	} else if created {
		logger.Infof("seeded initial administrator %q", admin.Username)
	}

	rec := reconcile.NewReconciler(dir)
	var source reconcile.Source = reconcile.FileSource{Path: cfg.Import.SourcePath}
	if store != nil {
		rec.WithArchiver(store)
		if cfg.Import.SourceObject != "" {
			source = reconcile.ObjectSource{Store: store, Key: cfg.Import.SourceObject}
		}
	}

	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limit = middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}
	requireAuth := middleware.AuthMiddleware(issuer, revocations, dir)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when configured dependencies answer
	r.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{"jwt": cfg.JWT.Secret != ""}
		if !deps["jwt"] {
			ready = false
		}
		if mongoClient != nil {
			deps["mongo"] = mongoClient.Ping(pingCtx, nil) == nil
			ready = ready && deps["mongo"]
		}
		if revocations.Enabled() {
			deps["redis"] = revocations.Ping(pingCtx) == nil
			ready = ready && deps["redis"]
		}
		if store != nil {
			deps["minio"] = store.Ping(pingCtx) == nil
			ready = ready && deps["minio"]
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	root := r.Group("/")
	handlers.NewAuthHandler(authSvc, revocations).Register(root, limit, requireAuth)
	handlers.NewUsersHandler(userSvc, rec, source, cfg.Import.MaxUploadMB).Register(root, requireAuth)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting docentes backend on %s (directory=%T)", addr, dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// cors allows the configured frontend origin with credentials.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
