package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/catalog"
	"github.com/rufit/rufitserver/internal/config"
	"github.com/rufit/rufitserver/internal/db"
	"github.com/rufit/rufitserver/internal/middleware"
	"github.com/rufit/rufitserver/internal/recommendation"
	"github.com/rufit/rufitserver/internal/telemetry/metrics"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/internal/userinfo"
	"github.com/rufit/rufitserver/internal/workouts"
	"github.com/rufit/rufitserver/pkg"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	authService *auth.Service
	catalog     *catalog.Catalog

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(params.VersionInfo, pgxpoolCollector)
	metricsManager := metrics.NewManager("rufit", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(
		params.Config.SessionTTLOrDefault(auth.DefaultTTL),
		rdb,
		auth.NewUsersRepo(dbPool),
		newPlateauStore(params.Config, rdb),
	)
	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(ctx)
			}
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "rufit-backend", rdb)
	if err != nil {
		return nil, err
	}

	// a broken catalog only disables alternatives and name canonicalisation
	exerciseCatalog, err := catalog.LoadFile(params.Config.ExercisesCsvPath)
	if err != nil {
		log.Errorf("failed to load exercise catalog from [%s]: %s", params.Config.ExercisesCsvPath, err)
	} else {
		log.Debugf("exercise catalog loaded: %d exercises", exerciseCatalog.Len())
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		redisClient: rdb,
		authService: authService,
		catalog:     exerciseCatalog,
		versionInfo: params.VersionInfo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

type plateauStore interface {
	recommendation.PlateauStore
	Forget(ctx context.Context, userID int) error
}

func newPlateauStore(cfg *config.Config, rdb *redis.Client) plateauStore {
	if cfg.PersistPlateauCycle {
		return recommendation.NewRedisPlateauStore(rdb)
	}
	return recommendation.EphemeralPlateauStore{}
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("healthz")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	authHandler := auth.NewHandler(s.authService, s.metricsManager)
	r.HandleFunc("/auth/logout", authHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/auth/account", authHandler.HandleDeleteAccount).Methods("DELETE", "OPTIONS").Name("delete-account")

	// rate limit the /login and /register endpoints to prevent abuse
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	loginRouter := r.PathPrefix("/auth").Subrouter()
	loginRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	loginRouter.HandleFunc("/register", authHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	loginRouter.Use(middleware.RateLimit(reqRateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager))

	profilesRepo := userinfo.NewRepo(s.dbPool)
	userInfoHandler := userinfo.NewHandler(profilesRepo)
	r.HandleFunc("/userinfo", userInfoHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-userinfo")
	r.HandleFunc("/userinfo", userInfoHandler.HandleUpsert).Methods("POST", "OPTIONS").Name("upsert-userinfo")

	workoutsRepo := workouts.NewRepo(s.dbPool)
	workoutsHandler := workouts.NewHandler(workoutsRepo, s.catalog, s.metricsManager)
	r.HandleFunc("/workout", workoutsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workout", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workout/session/{sessionId}", workoutsHandler.HandleUpdateSession).Methods("PUT", "OPTIONS").Name("update-workout-session")
	r.HandleFunc("/workout/session/{sessionId}", workoutsHandler.HandleDeleteSession).Methods("DELETE", "OPTIONS").Name("delete-workout-session")

	catalogHandler := catalog.NewHandler(s.catalog)
	r.HandleFunc("/exercises", catalogHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")

	recommendationService := recommendation.NewService(
		profilesRepo,
		workoutsRepo,
		s.catalog,
		newPlateauStore(s.config, s.redisClient),
		s.metricsManager,
	)
	recommendationHandler := recommendation.NewHandler(recommendationService)
	r.HandleFunc("/recommendations", recommendationHandler.HandleGet).Methods("GET", "OPTIONS").Name("recommendations")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins...))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
