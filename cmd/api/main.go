package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/mailer"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/services/downloads"
	"github.com/anBertoli/snap-share/services/galleries"
	"github.com/anBertoli/snap-share/services/pictures"
	"github.com/anBertoli/snap-share/services/users"
)

func main() {
	cfg, err := parseConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if cfg.DisplayVersion {
		fmt.Printf("API version: %s\n", version)
		return
	}

	logger := makeLogger(cfg.Env == "dev").Sugar()
	defer logger.Sync()

	if cfg.Db.AutoMigrate {
		err = store.Migrate(cfg.Db.Dsn)
		if err != nil {
			logger.Fatalw("migrating db", "err", err)
		}
	}

	db, err := store.Open(store.Config{
		Dsn:          cfg.Db.Dsn,
		MaxOpenConns: cfg.Db.MaxOpenConns,
		MaxIdleConns: cfg.Db.MaxIdleConns,
		MaxIdleTime:  cfg.Db.MaxIdleTime.Duration,
	})
	if err != nil {
		logger.Fatalf("cannot open db connection: %v", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "snapshare"),
	)

	mailer := mailer.New(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.Sender)

	app, err := newApplication(cfg, store.New(db), mailer, registry, logger)
	if err != nil {
		logger.Fatalw("building application", "err", err)
	}

	err = app.serve()
	if err != nil {
		logger.Fatalw("shutting down server", "err", err)
	}
}

// Build the service chains and the application around them.
func newApplication(cfg config, storage store.Store, mailer mailSender, registry *prometheus.Registry, logger *zap.SugaredLogger) (*application, error) {
	tokens, err := auth.NewTokenService(cfg.authConfig())
	if err != nil {
		return nil, err
	}
	authenticator := &auth.Authenticator{Tokens: tokens}

	var usersService users.Service
	usersService = &users.UsersService{
		Store:    storage,
		Tokens:   tokens,
		TokenTTL: cfg.Jwt.TokenTTL.Duration,
		ResetTTL: cfg.Jwt.ResetTTL.Duration,
	}
	usersService = &users.ValidationMiddleware{Next: usersService}
	usersService = &users.AuthMiddleware{Auth: authenticator, Next: usersService}

	var galleriesService galleries.Service
	galleriesService = &galleries.GalleriesService{Store: storage}
	galleriesService = &galleries.ValidationMiddleware{Service: galleriesService}
	galleriesService = &galleries.AuthMiddleware{Auth: authenticator, Next: galleriesService}

	var picturesService pictures.Service
	picturesService = &pictures.PicturesService{Store: storage}
	picturesService = &pictures.ValidationMiddleware{Service: picturesService}
	picturesService = &pictures.AuthMiddleware{Auth: authenticator, Next: picturesService}

	var downloadsService downloads.Service
	downloadsService = &downloads.DownloadsService{
		Store:    storage,
		Delivery: mailDelivery{mailer: mailer},
		Logger:   logger,
	}
	downloadsService, err = downloads.NewMetricsMiddleware(registry, downloadsService)
	if err != nil {
		return nil, err
	}
	downloadsService = &downloads.AuthMiddleware{Auth: authenticator, Next: downloadsService}

	return &application{
		users:     usersService,
		galleries: galleriesService,
		pictures:  picturesService,
		downloads: downloadsService,
		mailer:    mailer,
		db:        storage.DB,
		registry:  registry,
		logger:    logger,
		config:    cfg,
	}, nil
}

func makeLogger(dev bool) *zap.Logger {
	var zapLogger *zap.Logger
	if dev {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(config), os.Stdout, zap.DebugLevel,
			),
		)
	} else {
		config := zap.NewProductionEncoderConfig()
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(config), os.Stdout, zap.InfoLevel,
			),
		)
	}
	return zapLogger
}
