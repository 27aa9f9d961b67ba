package main

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/tracing"
)

// The extractToken middleware extracts the bearer token from the request 'Authorization'
// header and put it into the request context. The logic here is not meant to authenticate
// the user, but to provide transport-specific data extraction. The authentication is
// business logic and this will be handled by the service layer.
func (app *application) extractToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// Indicates to any caches that the response may vary based on the value of
		// the Authorization header in the request.
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")
		if authorizationHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Otherwise, we expect the value of the Authorization header to be in the format
		// "Bearer <token>". If the header isn't in the expected format we return a 401.
		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		r = r.WithContext(auth.ContextSetToken(r.Context(), headerParts[1]))
		next.ServeHTTP(w, r)
	})
}

// The tracing middleware puts a request trace into the request context. The request
// id is echoed back to the client.
func (app *application) tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = tracing.NewTraceToRequest(r)
		w.Header().Set(tracing.RequestIDHeader, tracing.TraceFromRequestCtx(r).ID)
		next.ServeHTTP(w, r)
	})
}

// The logging middleware is used to log incoming requests and related outgoing responses.
// Another log is emitted for outgoing responses, using the request trace enriched by
// the handlers.
func (app *application) logging(next http.Handler) http.Handler {
	return app.tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestTrace := tracing.TraceFromRequestCtx(r)

		if r.URL.Path == app.config.Metrics.MetricsEndpoint {
			next.ServeHTTP(w, r)
			return
		}

		ip, err := realIP(r)
		if err != nil {
			app.logger.Errorw("retrieving real IP",
				"id", requestTrace.ID,
				"err", err,
			)
		}

		app.logger.Infow("incoming request",
			"id", requestTrace.ID,
			"start_time", requestTrace.Start,
			"remote_addr", r.RemoteAddr,
			"real_ip", ip,
			"URL", r.URL,
			"method", r.Method,
		)

		next.ServeHTTP(w, r)

		// Logs are produced with different severity based on the HTTP code of the response.
		end := time.Now().UTC()
		fields := []interface{}{
			"id", requestTrace.ID,
			"http_code", requestTrace.HttpStatus,
			"end_time", end,
			"duration_ms", end.Sub(requestTrace.Start).Milliseconds(),
		}
		if requestTrace.PrivateErr != nil {
			fields = append(fields, "private_err", requestTrace.PrivateErr)
		}

		switch requestTrace.HttpStatus / 100 {
		case 0, 1, 2, 3:
			app.logger.Infow("request completed", fields...)
		case 4:
			app.logger.Warnw("request completed", fields...)
		case 5:
			app.logger.Errorw("request error", fields...)
		}
	}))
}

// The metrics middleware registers the count of the HTTP requests (divided by route
// and HTTP code) and the latency of the responses (divided by route). It runs after
// the route matching, so the route template is used instead of the raw path. The
// router builds the middleware chain on every match, so the collectors are created
// once here and captured by the returned middleware.
func (app *application) metrics() mux.MiddlewareFunc {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_http_request",
			Help: "Counter of HTTP requests.",
		},
		[]string{"path", "code"},
	)
	requestsLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_http_requests_duration_milliseconds",
			Help:    "Histogram of latencies for HTTP requests",
			Buckets: []float64{0.1, 1, 10, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"path"},
	)
	app.registry.MustRegister(requestCount, requestsLatency)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}
			if path == app.config.Metrics.MetricsEndpoint {
				next.ServeHTTP(w, r)
				return
			}

			requestTrace := tracing.TraceFromRequestCtx(r)
			start := time.Now()
			next.ServeHTTP(w, r)

			requestCount.WithLabelValues(path, strconv.Itoa(requestTrace.HttpStatus)).Inc()
			requestsLatency.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}

// The recoverPanic middleware turns a panic of a handler into a 500 response,
// closing the connection.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// Warn any caches that the response may be different based on different origins.
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		// CORS requests have the Origin header set. Requests from an origin not
		// included in the trusted list are served as usual, without CORS headers.
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		for _, trustedOrigin := range app.config.Cors.TrustedOrigins {
			if origin != trustedOrigin {
				continue
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			// Preflight requests must authorize the non-CORS safe headers and methods.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, PATCH, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func realIP(r *http.Request) (string, error) {
	addr := r.Header.Get("X-Real-Ip")
	if addr == "" {
		addr = r.Header.Get("X-Forwarded-For")
		if addr == "" {
			addr = r.RemoteAddr
		}
	}
	// Proxies send the bare address, without the port.
	if net.ParseIP(addr) != nil {
		return addr, nil
	}
	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}
	return ip, nil
}
