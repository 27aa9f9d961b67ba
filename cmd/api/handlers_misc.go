package main

import (
	"context"
	"net/http"
	"time"

	"github.com/anBertoli/snap-share/pkg/tracing"
)

// Report the liveness of the API and whether the database answers. An unreachable
// database turns the response into a 503.
func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "available", "available", http.StatusOK
	err := app.db.PingContext(ctx)
	if err != nil {
		app.logger.Errorw("healthcheck database ping",
			"id", tracing.TraceFromRequestCtx(r).ID,
			"err", err,
		)
		status, database, code = "degraded", "unavailable", http.StatusServiceUnavailable
	}

	env := env{
		"status": status,
		"system_info": map[string]string{
			"environment": app.config.Env,
			"version":     version,
		},
		"dependencies": map[string]string{
			"database": database,
		},
	}
	app.sendJSON(w, r, code, env, nil)
}
