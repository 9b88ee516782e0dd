package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/trusthire/trusthire/internal/config"
	"github.com/trusthire/trusthire/internal/infra/chain"
	"github.com/trusthire/trusthire/internal/infra/database"
	"github.com/trusthire/trusthire/internal/infra/repository"
	"github.com/trusthire/trusthire/internal/infra/storage"
	"github.com/trusthire/trusthire/internal/logger"
	"github.com/trusthire/trusthire/internal/present/rest"
	"github.com/trusthire/trusthire/internal/present/rest/middleware"
	"github.com/trusthire/trusthire/internal/service"
	"github.com/trusthire/trusthire/internal/telemetry"
	"github.com/trusthire/trusthire/internal/token"
	"github.com/trusthire/trusthire/internal/usecase"
)

func main() {
	configPath := flag.String("config", os.Getenv("TRUSTHIRE_CONFIG"), "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err.Error())
	}

	log := logger.New(conf.Server.LogLevel)
	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.Setup(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			log.Fatal("failed to set up tracing", "error", err.Error())
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		log.Fatal("failed to connect database", "error", err.Error())
	}
	if err := database.MigratePostgres(db); err != nil {
		log.Fatal("failed to migrate database", "error", err.Error())
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	minioClient, err := minio.New(conf.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		Secure: conf.Storage.UseSSL,
	})
	if err != nil {
		log.Fatal("failed to connect object storage", "error", err.Error())
	}
	resumes, err := storage.NewResumeStore(ctx, minioClient, conf.Storage.Bucket)
	if err != nil {
		log.Fatal("failed to prepare resume bucket", "error", err.Error())
	}

	users := repository.NewUserRepository(db)
	jobs := repository.NewJobRepository(db, mc)
	applications := repository.NewApplicationRepository(db)
	ratings := repository.NewRatingRepository(db)
	intents := repository.NewPaymentRepository(db)

	tokens := token.NewManager(conf.Auth.JWTSecret, conf.Auth.AccessTTL)
	revocations := service.NewRedisRevocations(rdb)
	signal := service.NewSignalService(rdb)

	auth := service.NewAuthService(users, tokens, revocations, signal, log.With("module", "auth"))
	payments := service.NewPaymentService(intents, jobs, signal, log.With("module", "payment"))

	var reputation usecase.ReputationChain
	if conf.Chain.RPCURL != "" {
		adapter, err := chain.Dial(conf.Chain.RPCURL, conf.Chain.ContractAddress, conf.Chain.PrivateKey, conf.Chain.ChainID)
		if err != nil {
			log.Fatal("failed to dial chain", "error", err.Error())
		}
		reputation = adapter
	} else {
		log.Warn("chain rpc url not set, reputation runs off-chain only")
	}

	jobUC := usecase.NewJobUsecase(jobs, payments)
	applicationUC := usecase.NewApplicationUsecase(applications, jobs, signal)
	profileUC := usecase.NewProfileUsecase(users, resumes)
	ratingUC := usecase.NewRatingUsecase(ratings, users, reputation, log.With("module", "rating"))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.TimeoutWithConfig(echomw.TimeoutConfig{
		Timeout: conf.Server.RequestTimeout,
		Skipper: func(c echo.Context) bool {
			// The websocket stream outlives any request budget.
			return c.Path() == "/realtime"
		},
	}))
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("trusthire"))
	}
	e.Use(middleware.NewAuthMiddleware(auth).IdentifyRequester)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := rest.NewHandler(auth, payments, signal, jobUC, applicationUC, profileUC, ratingUC, conf.Payment.CallbackSecret)
	handler.RegisterRoutes(e)

	log.Info("starting server", "listen", conf.Server.Listen)
	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
