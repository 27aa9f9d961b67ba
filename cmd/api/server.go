package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anBertoli/snap-share/pkg/mailer"
	"github.com/anBertoli/snap-share/services/downloads"
	"github.com/anBertoli/snap-share/services/galleries"
	"github.com/anBertoli/snap-share/services/pictures"
	"github.com/anBertoli/snap-share/services/users"
)

// Sends a templated email, implemented by mailer.Mailer.
type mailSender interface {
	Send(ctx context.Context, recipient, templateFile string, data interface{}, attachments ...mailer.Attachment) error
}

type application struct {
	users     users.Service
	galleries galleries.Service
	pictures  pictures.Service
	downloads downloads.Service
	mailer    mailSender
	db        *sqlx.DB
	registry  *prometheus.Registry
	logger    *zap.SugaredLogger
	bgTasks   sync.WaitGroup
	config    config
}

func (app *application) handler() http.Handler {
	router := mux.NewRouter()

	router.Methods(http.MethodPost).Path("/users/signUp").HandlerFunc(app.signUpHandler)
	router.Methods(http.MethodPost).Path("/users/signIn").HandlerFunc(app.signInHandler)
	router.Methods(http.MethodPost).Path("/users/forgot/token").HandlerFunc(app.genResetTokenHandler)
	router.Methods(http.MethodPost).Path("/users/forgot").HandlerFunc(app.resetPasswordHandler)
	router.Methods(http.MethodGet).Path("/users/me").HandlerFunc(app.getMeHandler)
	router.Methods(http.MethodDelete).Path("/users/me").HandlerFunc(app.deleteMeHandler)
	router.Methods(http.MethodGet).Path("/users/download").HandlerFunc(app.listDownloadRequestsHandler)
	router.Methods(http.MethodGet).Path("/users/download/permit/{req-id}/{permit}").HandlerFunc(app.decideDownloadHandler)

	router.Methods(http.MethodGet).Path("/galleries/").HandlerFunc(app.listOwnedGalleriesHandler)
	router.Methods(http.MethodGet).Path("/galleries/public").HandlerFunc(app.listPublicGalleriesHandler)
	router.Methods(http.MethodGet).Path("/galleries/search").HandlerFunc(app.searchGalleriesHandler)
	router.Methods(http.MethodPost).Path("/galleries/suggestions").HandlerFunc(app.suggestionsHandler)
	router.Methods(http.MethodGet).Path("/galleries/{id}").HandlerFunc(app.getGalleryHandler)
	router.Methods(http.MethodPost).Path("/galleries").HandlerFunc(app.createGalleryHandler)
	router.Methods(http.MethodPatch).Path("/galleries/{id}").HandlerFunc(app.updateGalleryHandler)
	router.Methods(http.MethodDelete).Path("/galleries/{id}").HandlerFunc(app.deleteGalleryHandler)
	router.Methods(http.MethodGet).Path("/public/galleries").HandlerFunc(app.listAnonymousGalleriesHandler)

	router.Methods(http.MethodGet).Path("/pictures/{gallery-id}").HandlerFunc(app.listPicturesHandler)
	router.Methods(http.MethodGet).Path("/pictures/{gallery-id}/picture/{picture-id}").HandlerFunc(app.getPictureHandler)
	router.Methods(http.MethodGet).Path("/pictures/{gallery-id}/download/{picture-id}").HandlerFunc(app.requestDownloadHandler)
	router.Methods(http.MethodPost).Path("/pictures").HandlerFunc(app.createPictureHandler)
	router.Methods(http.MethodPatch).Path("/pictures/{picture-id}").HandlerFunc(app.updatePictureHandler)
	router.Methods(http.MethodDelete).Path("/pictures/{picture-id}").HandlerFunc(app.deletePictureHandler)

	router.Methods(http.MethodGet).Path("/healthcheck").HandlerFunc(app.healthcheckHandler)
	router.Methods(http.MethodGet).Path(app.config.Metrics.MetricsEndpoint).Handler(
		promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry}),
	)

	// Route middlewares see the matched route template.
	router.Use(app.metrics())

	router.NotFoundHandler = http.HandlerFunc(app.routeNotFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(app.methodNotAllowedHandler)

	handler := app.extractToken(router)
	handler = app.enableCORS(handler)
	handler = app.recoverPanic(handler)
	handler = app.logging(handler)
	return handler
}

func (app *application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Port),
		Handler:      app.handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		app.logger.Infow("shutting down server", "signal", s.String())

		// Shutdown() returns nil if the graceful shutdown was successful, or an error
		// if the listeners couldn't be closed or the 5-second deadline is hit.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		// Block until the background goroutines (e.g. reset emails) have finished.
		app.bgTasks.Wait()

		shutdownError <- err
	}()

	app.logger.Infow("starting server",
		"addr", srv.Addr,
		"env", app.config.Env,
	)

	// Calling Shutdown() on our server will cause ListenAndServe() to immediately
	// return a http.ErrServerClosed error, that is the graceful shutdown has started.
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Infow("stopped server", "addr", srv.Addr)
	return nil
}

// The background() helper runs fn in a goroutine tracked by the server, so that
// a graceful shutdown waits for it.
func (app *application) background(fn func()) {
	app.bgTasks.Add(1)
	go func() {
		defer app.bgTasks.Done()

		// A panic in a background task must not bring the server down.
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panic", "err", err)
			}
		}()

		fn()
	}()
}
