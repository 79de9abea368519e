package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "moni-chat/cmd/api/router/v1"
	cacheAdapter "moni-chat/internal/infrastructure/cache/adapter"
	"moni-chat/internal/infrastructure/database"
	"moni-chat/internal/infrastructure/logger"
	profileAdapter "moni-chat/internal/infrastructure/profile/adapter"
	pport "moni-chat/internal/infrastructure/profile/port"
	queueAdapter "moni-chat/internal/infrastructure/queue/adapter"
	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	"moni-chat/internal/pkg/conversation/application/task"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger.Setup(os.Getenv("APP_ENV"))

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	dir := buildDirectory()
	hub := realtime.NewHub()
	defer hub.Close()

	var queueClient qport.Client
	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		slog.Warn("queue client disabled", "err", err)
	} else {
		queueClient = client
		defer client.Close()
	}

	// Run the notification workers in-process when the queue is reachable; a
	// dedicated worker deployment can take over without code changes.
	if queueClient != nil {
		if srv, err := queueAdapter.NewAsynqServer(); err != nil {
			slog.Warn("queue server disabled", "err", err)
		} else {
			task.RegisterNotifyMessageTask(srv)
			workerCtx, stopWorkers := context.WithCancel(context.Background())
			defer stopWorkers()
			go func() {
				if err := srv.Run(workerCtx); err != nil {
					slog.Error("queue server stopped", "err", err)
				}
			}()
		}
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, dir, hub, queueClient)

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}

// buildDirectory wires the profile backend, layering the Redis cache in front
// when one is reachable. Without PROFILE_API_URL avatar resolution still works
// through room documents, message history and placeholders.
func buildDirectory() pport.Directory {
	httpDir, err := profileAdapter.NewHTTPDirectoryFromEnv()
	if err != nil {
		slog.Warn("profile directory disabled", "err", err)
		return nil
	}

	cache, err := cacheAdapter.NewRedisAdapter()
	if err != nil {
		slog.Warn("profile cache disabled", "err", err)
		return httpDir
	}
	return profileAdapter.NewCachedDirectory(httpDir, cache)
}
