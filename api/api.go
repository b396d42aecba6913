// Package api receives analytics events over HTTP and hands them to the
// Slack integration.
package api

import (
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/common/middleware"

	"github.com/weaveworks/integration-slack/common/render"
	"github.com/weaveworks/integration-slack/event"
	"github.com/weaveworks/integration-slack/formatter"
	"github.com/weaveworks/integration-slack/gate"
	"github.com/weaveworks/integration-slack/integration"
	"github.com/weaveworks/integration-slack/sender"
)

// MaxBodySize is the largest event accepted, in bytes.
const MaxBodySize = 1 << 20

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "slack",
		Name:      "request_duration_seconds",
		Help:      "Time (in seconds) spent serving HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status_code", "ws"})
)

func init() {
	prometheus.MustRegister(requestDuration)
}

// API serves the event endpoints.
type API struct {
	integration integration.Integration
	http.Handler
}

// New creates a new API
func New(i integration.Integration) *API {
	a := &API{integration: i}
	a.Handler = a.routes()
	return a
}

func (a *API) routes() http.Handler {
	r := mux.NewRouter()
	for _, route := range []struct {
		name, method, path string
		handler            http.Handler
	}{
		{"identify", "POST", "/v1/identify", a.handle(event.Identify)},
		{"track", "POST", "/v1/track", a.handle(event.Track)},
		{"events", "POST", "/v1/events", a.handle("")},
		{"health_check", "GET", "/healthcheck", http.HandlerFunc(healthCheck)},
		{"metrics", "GET", "/metrics", promhttp.Handler()},
	} {
		r.Handle(route.path, route.handler).Methods(route.method).Name(route.name)
	}
	return middleware.Merge(
		middleware.Func(logRequests),
		middleware.Instrument{
			RouteMatcher: r,
			Duration:     requestDuration,
		},
	).Wrap(r)
}

// handle returns the handler for events of the given kind. An empty kind
// takes it from the "type" field of the event.
func (a *API) handle(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
		if err != nil {
			render.Error(w, r, errors.Wrapf(event.ErrMalformed, "cannot read request body: %v", err), errorStatusCode)
			return
		}

		var e *event.Event
		if kind == "" {
			e, err = event.Parse(body)
		} else {
			e, err = event.ParseAs(kind, body)
		}
		if err != nil {
			render.Error(w, r, err, errorStatusCode)
			return
		}

		if err := integration.Dispatch(r.Context(), a.integration, e); err != nil {
			render.Error(w, r, err, errorStatusCode)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func errorStatusCode(err error) int {
	cause := errors.Cause(err)
	switch cause.(type) {
	case *formatter.TemplateError:
		return http.StatusBadRequest
	case *gate.Rejection:
		return http.StatusUnprocessableEntity
	case *sender.DeliveryError:
		return http.StatusBadGateway
	}
	if cause == event.ErrMalformed {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(begin),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Debug("request served")
		}
	})
}
