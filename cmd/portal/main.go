package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	authhttp "github.com/vector-portal/backend/internal/auth/http"
	authrepo "github.com/vector-portal/backend/internal/auth/repository"
	"github.com/vector-portal/backend/internal/auth/service"
	"github.com/vector-portal/backend/internal/common/clock"
	"github.com/vector-portal/backend/internal/common/config"
	commoncrypto "github.com/vector-portal/backend/internal/common/crypto"
	"github.com/vector-portal/backend/internal/common/db"
	commonhttp "github.com/vector-portal/backend/internal/common/http"
	"github.com/vector-portal/backend/internal/common/logger"
	srv "github.com/vector-portal/backend/internal/common/server"
	"github.com/vector-portal/backend/internal/session"
	"github.com/vector-portal/backend/internal/session/redisstore"
	"github.com/vector-portal/backend/internal/vector"
	vectorhttp "github.com/vector-portal/backend/internal/vector/http"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "portal", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadPortalConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	userRepo := authrepo.NewPgUserRepository(pool)
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()

	sessionStore := newSessionStore(cfg, clk, log)
	sessions := session.NewManager(sessionStore, idGenerator, clk, cfg.SessionTTL, log)

	authService := service.NewAuthService(userRepo, hasher, idGenerator, clk, log)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authhttp.NewHandler(authService, sessions, cfg.RequestTimeout, log))
	mux.Handle("/api/vector", vectorhttp.NewHandler(vector.NewGenerator(), log))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	finalHandler := commonhttp.BuildBaseHandler(log, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	srv.StartWithGracefulShutdown(server, log, "portal")
}

func newSessionStore(cfg config.PortalConfig, clk clock.Clock, log *logger.Logger) session.Store {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, using in-memory session store")
		return session.NewMemoryStore(clk)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url: %v", err)
	}

	log.Infof("using redis session store at %s", opts.Addr)
	return redisstore.New(redis.NewClient(opts))
}
