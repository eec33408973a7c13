package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	anomalyinadapter "calmtrace/internal/modules/anomaly/adapter/in"
	anomalyoutadapter "calmtrace/internal/modules/anomaly/adapter/out"
	anomalyservice "calmtrace/internal/modules/anomaly/service"
	anomalyusecase "calmtrace/internal/modules/anomaly/usecase"
	baselineinadapter "calmtrace/internal/modules/baseline/adapter/in"
	baselineoutadapter "calmtrace/internal/modules/baseline/adapter/out"
	baselineservice "calmtrace/internal/modules/baseline/service"
	baselineusecase "calmtrace/internal/modules/baseline/usecase"
	reliefinadapter "calmtrace/internal/modules/relief/adapter/in"
	reliefoutadapter "calmtrace/internal/modules/relief/adapter/out"
	reliefservice "calmtrace/internal/modules/relief/service"
	reliefusecase "calmtrace/internal/modules/relief/usecase"
	riskinadapter "calmtrace/internal/modules/risk/adapter/in"
	riskoutadapter "calmtrace/internal/modules/risk/adapter/out"
	riskservice "calmtrace/internal/modules/risk/service"
	riskusecase "calmtrace/internal/modules/risk/usecase"
	sampleinadapter "calmtrace/internal/modules/sample/adapter/in"
	sampleoutadapter "calmtrace/internal/modules/sample/adapter/out"
	samplein "calmtrace/internal/modules/sample/port/in"
	sampleservice "calmtrace/internal/modules/sample/service"
	sampleusecase "calmtrace/internal/modules/sample/usecase"
	"calmtrace/internal/platform/backup"
	"calmtrace/internal/platform/clock"
	"calmtrace/internal/platform/config"
	"calmtrace/internal/platform/httpx"
	"calmtrace/internal/platform/id"
	"calmtrace/internal/platform/keylock"
	"calmtrace/internal/platform/logging"
	"calmtrace/internal/platform/sqlitedb"
	"calmtrace/internal/platform/tx"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config      config.Config
	SampleCLI   sampleinadapter.CLIHandler
	BaselineCLI baselineinadapter.CLIHandler
	AnomalyCLI  anomalyinadapter.CLIHandler
	ReliefCLI   reliefinadapter.CLIHandler
	RiskCLI     riskinadapter.CLIHandler
	Backup      *backup.Service

	db        *sql.DB
	logger    *logrus.Logger
	router    *gin.Engine
	samples   samplein.Usecase
	scheduler *riskinadapter.Scheduler
}

// New opens the store and wires every module. logOut receives the logs.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	app, err := wire(cfg, db, logger, loc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func wire(cfg config.Config, db *sql.DB, logger *logrus.Logger, loc *time.Location) (*App, error) {
	clk := clock.SystemClock{}
	txm := tx.NewSQLManager(db)

	sampleStore, err := sampleoutadapter.NewSQLiteSampleStore(db)
	if err != nil {
		return nil, fmt.Errorf("new sample store: %w", err)
	}
	sampleQuery := sampleusecase.NewQueryInteractor(sampleStore)

	eventStore, err := anomalyoutadapter.NewSQLiteEventStore(db)
	if err != nil {
		return nil, fmt.Errorf("new anomaly store: %w", err)
	}
	anomalyUC := anomalyusecase.NewInteractor(
		anomalyservice.NewAnomalyService(clk, eventStore, keylock.New(), cfg.DedupWindow, logging.Component(logger, "anomaly")),
		eventStore,
	)

	interventions, err := reliefoutadapter.NewSQLiteInterventionStore(db)
	if err != nil {
		return nil, fmt.Errorf("new intervention store: %w", err)
	}
	sessions, err := reliefoutadapter.NewSQLiteSessionStore(db)
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}
	reliefUC := reliefusecase.NewInteractor(reliefservice.NewReliefService(reliefservice.Deps{
		Clock:         clk,
		IDs:           id.UUID{},
		Sessions:      sessions,
		Interventions: interventions,
		Samples:       reliefoutadapter.NewSampleReaderAdapter(sampleQuery),
		Tx:            txm,
		Locks:         keylock.New(),
		PostWindow:    cfg.PostWindow,
		Log:           logging.Component(logger, "relief"),
	}), sessions, interventions)

	sampleUC := sampleusecase.NewInteractor(
		sampleservice.NewSampleService(clk, sampleStore),
		sampleQuery,
		cfg.IngestWorkers,
		logging.Component(logger, "sample"),
		sampleoutadapter.NewAnomalyObserver(anomalyUC),
		sampleoutadapter.NewReliefBackfillObserver(reliefUC),
	)

	baselineStore, err := baselineoutadapter.NewSQLiteBaselineStore(db)
	if err != nil {
		return nil, fmt.Errorf("new baseline store: %w", err)
	}
	baselineUC := baselineusecase.NewInteractor(baselineservice.NewBaselineService(baselineservice.Deps{
		Clock:        clk,
		Store:        baselineStore,
		Samples:      baselineoutadapter.NewCalmSampleAdapter(sampleQuery),
		Tx:           txm,
		Locks:        keylock.New(),
		LookbackDays: cfg.BaselineLookbackDays,
		MinSamples:   cfg.MinCalmSamples,
		Log:          logging.Component(logger, "baseline"),
	}), baselineStore)

	scoreStore, err := riskoutadapter.NewSQLiteScoreStore(db)
	if err != nil {
		return nil, fmt.Errorf("new risk store: %w", err)
	}
	riskUC := riskusecase.NewInteractor(riskservice.NewRiskService(riskservice.Deps{
		Clock:     clk,
		Scores:    scoreStore,
		Anomalies: riskoutadapter.NewAnomalySourceAdapter(anomalyUC),
		Samples:   riskoutadapter.NewSampleSourceAdapter(sampleQuery),
		Locks:     keylock.New(),
		Location:  loc,
		Log:       logging.Component(logger, "risk"),
	}), scoreStore)
	scheduler, err := riskinadapter.NewScheduler(riskUC, cfg.RiskCron, loc, logging.Component(logger, "risk-scheduler"))
	if err != nil {
		return nil, err
	}

	var putter backup.ObjectPutter
	if cfg.Backup.Bucket != "" {
		client, err := backup.NewS3Client(context.Background())
		if err != nil {
			return nil, err
		}
		putter = client
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), httpx.Logger(logging.Component(logger, "http")))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api := router.Group("/api/v1", httpx.RequireUser())
	sampleinadapter.NewHTTPHandler(sampleUC).Register(api)
	baselineinadapter.NewHTTPHandler(baselineUC).Register(api)
	anomalyinadapter.NewHTTPHandler(anomalyUC).Register(api)
	reliefinadapter.NewHTTPHandler(reliefUC).Register(api)
	riskinadapter.NewHTTPHandler(riskUC).Register(api)

	return &App{
		Config:      cfg,
		SampleCLI:   sampleinadapter.NewCLIHandler(sampleUC),
		BaselineCLI: baselineinadapter.NewCLIHandler(baselineUC),
		AnomalyCLI:  anomalyinadapter.NewCLIHandler(anomalyUC),
		ReliefCLI:   reliefinadapter.NewCLIHandler(reliefUC),
		RiskCLI:     riskinadapter.NewCLIHandler(riskUC),
		Backup:      backup.NewService(db, putter, logging.Component(logger, "backup")),
		db:          db,
		logger:      logger,
		router:      router,
		samples:     sampleUC,
		scheduler:   scheduler,
	}, nil
}

// Handler exposes the HTTP API, mainly for tests.
func (a *App) Handler() http.Handler { return a.router }

func (a *App) Close() error { return a.db.Close() }

// Serve runs the HTTP API, the risk scheduler and, when redis.addr is set,
// the sample queue consumer until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	log := logging.Component(a.logger, "serve")

	var rdb *redis.Client
	if a.Config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("connect redis %s: %w", a.Config.Redis.Addr, err)
		}
	}

	srv := &http.Server{Addr: a.Config.HTTPAddr, Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if rdb != nil {
		consumer := sampleinadapter.NewRedisConsumer(rdb, a.Config.Redis.Key, a.Config.Redis.Block, a.samples, logging.Component(a.logger, "redis"))
		g.Go(func() error {
			defer rdb.Close()
			consumer.Run(gctx)
			return nil
		})
	} else {
		log.Info("redis.addr not set, sample queue consumer disabled")
	}
	a.scheduler.Start(gctx)

	return g.Wait()
}
