package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-search/api"
	api_i "github.com/beka-birhanu/vinom-search/api/i"
	"github.com/beka-birhanu/vinom-search/api/identity"
	searchapi "github.com/beka-birhanu/vinom-search/api/search"
	"github.com/beka-birhanu/vinom-search/config"
	"github.com/beka-birhanu/vinom-search/infrastruture/repo"
	"github.com/beka-birhanu/vinom-search/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-search/infrastruture/token"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout        = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
	maxPublicEpisodeDim   = 64
	maxPublicEpisodeSteps = 100000
	leaderboardEntries    = 100
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the experiment API",
	Long: `Serve the HTTP API under /api/v1.

Requires DB_URI (MongoDB), REDIS_ADDR and JWT_SECRET.`,
	RunE: runServe,
}

func connectMongo(ctx context.Context) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(envs.DBURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	appLogger.Info("Connected to MongoDB")
	return client, nil
}

func connectRedis(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	appLogger.Info("Connected to Redis")
	return client, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := envs.RequireServer(); err != nil {
		return err
	}
	gin.SetMode(envs.GinMode)
	ctx := cmd.Context()

	mongoClient, err := connectMongo(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	redisClient, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	experimentRepo := repo.NewExperimentRepo(mongoClient, envs.DBName, "experiments")
	operatorRepo := repo.NewOperatorRepo(mongoClient, envs.DBName, "operators")
	if err := operatorRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	appLogger.Info("Repositories initialized")

	leaderboard := sortedstorage.NewRedisLeaderboard(redisClient, sortedstorage.LeaderboardOptions{
		MaxEntries: leaderboardEntries,
		TTL:        envs.LeaderboardTTL,
	})

	jwtTokenizer, err := token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	if err != nil {
		return err
	}
	authService, err := service.NewAuthService(operatorRepo, jwtTokenizer, envs.TokenTTL)
	if err != nil {
		return err
	}

	manager, err := service.NewExperimentManager(&service.ManagerConfig{
		Runner: service.NewExperimentRunner(service.RunnerConfig{
			Workers: envs.Search.Workers,
			Logger:  componentLogger("RUNNER", config.ColorCyan),
		}),
		Repo:        experimentRepo,
		Leaderboard: leaderboard,
		Logger:      componentLogger("EXPERIMENTS", config.ColorPurple),
	})
	if err != nil {
		return err
	}
	defer func() {
		manager.StopAll()
		manager.Wait()
	}()

	httpLogger := componentLogger("HTTP", config.ColorMagenta)
	experimentController, err := searchapi.NewExperimentController(manager, httpLogger)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Config{
		BaseURL: "/api",
		Controllers: []api_i.Controller{
			identity.NewIdentityServer(authService),
			experimentController,
			searchapi.NewEpisodeController(
				service.NewEpisodeService(maxPublicEpisodeDim, componentLogger("EPISODE", config.ColorBlue)).
					MaxSteps(maxPublicEpisodeSteps),
			),
			searchapi.NewLeaderboardController(leaderboard),
		},
		AuthorizationMiddleware: identity.Authoriz(jwtTokenizer, service.ScopeExperiments),
		Logger:                  httpLogger,
	})
	appLogger.Info("Router initialized")

	server := &http.Server{
		Addr:              envs.Addr(),
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.WithField("addr", server.Addr).Info("HTTP server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
