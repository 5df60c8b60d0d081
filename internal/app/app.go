package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stationuptime/internal/config"
	"stationuptime/internal/db"
	httpserver "stationuptime/internal/http"
	"stationuptime/internal/http/handlers"
	"stationuptime/internal/http/middleware"
	"stationuptime/internal/ingest"
	"stationuptime/internal/redisstore"
	"stationuptime/internal/repository"
	"stationuptime/internal/service"
	"stationuptime/internal/uptime"
	"stationuptime/internal/ws"
)

// App wires uptime-server dependencies.
type App struct {
	server      *httpserver.Server
	wsManager   *ws.Manager
	pool        *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		pool.Close()
		return nil, err
	}

	runRepo := repository.NewUptimeRepository(pool)
	stationRepo := repository.NewStationRepository(pool)
	cache := redisstore.NewStore(redisClient, cfg.CacheTTL())
	liveStore := ingest.NewStore()
	engine := uptime.NewEngine(cfg.Engine.Workers, logger)

	uptimeService := service.NewUptimeService(engine, runRepo, stationRepo, cache, liveStore, logger)

	wsManager := ws.NewManager(cfg.WSPingInterval())
	wsServer := ws.NewServer(wsManager, ingest.NewProcessor(liveStore, logger), cfg.WSWriteTimeout(), logger)

	routes := httpserver.Routes{
		Compute:       handlers.NewComputeHandler(uptimeService, logger),
		LatestRun:     handlers.NewLatestRunHandler(uptimeService, logger),
		StationUptime: handlers.NewStationUptimeHandler(uptimeService, logger),
		LiveUptime:    handlers.NewLiveUptimeHandler(uptimeService, logger),
		ReportsWS:     wsServer.HandleWS,
		Health:        handlers.NewHealthHandler(),
	}
	if cfg.Auth.JWTSecret != "" {
		routes.Auth = middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		wsManager:   wsManager,
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the websocket keepalive loop.
func (a *App) Run(ctx context.Context) error {
	go a.wsManager.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
